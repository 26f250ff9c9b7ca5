package standard

import (
	"fmt"
)

// BatchOutcome is the per-item result of a bulk approve or reject.
type BatchOutcome struct {
	ID    string `json:"id"`
	Kind  string `json:"result"`
	Error string `json:"error,omitempty"`
}

// ApprovalEngine decides pending change-log entries. An entry moves from
// pending to approved or rejected exactly once; the table mutation and
// the status flip commit in the same transaction, so no reader ever sees
// one without the other.
type ApprovalEngine struct {
	store *ConfigStore
}

// NewApprovalEngine creates a new ApprovalEngine.
func NewApprovalEngine(store *ConfigStore) *ApprovalEngine {
	return &ApprovalEngine{store: store}
}

// Approve applies a pending request and marks it approved. Fails with
// ErrInvalidState if the entry does not exist or is not pending (a
// double approval or an approval of a rejected entry is an error, not a
// no-op), and with ErrNotFound if the target row is already gone.
func (e *ApprovalEngine) Approve(id, reviewedBy string) (*ChangeLogEntry, error) {
	var finalized *ChangeLogEntry
	err := e.store.Atomically(func(tx *ConfigStore) error {
		entry, err := loadPending(tx, id)
		if err != nil {
			return err
		}

		payload, err := e.apply(tx, entry)
		if err != nil {
			return err
		}

		if err := tx.Log().finalize(id, StatusApproved, reviewedBy, "", payload); err != nil {
			return err
		}

		finalized, err = tx.Log().Get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// Reject marks a pending request rejected. No table outside the log is
// touched: data state before and after a rejection is identical except
// for the entry itself.
func (e *ApprovalEngine) Reject(id, reviewedBy, note string) (*ChangeLogEntry, error) {
	var finalized *ChangeLogEntry
	err := e.store.Atomically(func(tx *ConfigStore) error {
		if _, err := loadPending(tx, id); err != nil {
			return err
		}
		if err := tx.Log().finalize(id, StatusRejected, reviewedBy, note, nil); err != nil {
			return err
		}
		var err error
		finalized, err = tx.Log().Get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// ApproveAll approves each id independently. One item's failure (a stale
// target already removed out-of-band, a duplicate of an entry already
// decided) never prevents the others from committing.
func (e *ApprovalEngine) ApproveAll(ids []string, reviewedBy string) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(ids))
	for _, id := range ids {
		_, err := e.Approve(id, reviewedBy)
		outcomes = append(outcomes, newOutcome(id, "approved", err))
	}
	return outcomes
}

// RejectAll rejects each id independently, collecting per-item outcomes.
func (e *ApprovalEngine) RejectAll(ids []string, reviewedBy, note string) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(ids))
	for _, id := range ids {
		_, err := e.Reject(id, reviewedBy, note)
		outcomes = append(outcomes, newOutcome(id, "rejected", err))
	}
	return outcomes
}

// apply dispatches the pending entry to its table mutation and returns
// the finalized payload (the request payload plus impact counts for
// cascades and the applied value for updates).
func (e *ApprovalEngine) apply(tx *ConfigStore, entry *ChangeLogEntry) (JSONAny, error) {
	payload := entry.Payload
	if payload == nil {
		payload = JSONAny{}
	}

	switch {
	case entry.EntityType == EntityComponent && entry.Action == ActionRemove:
		name, err := payloadString(payload, "component_name")
		if err != nil {
			return nil, err
		}
		techRemoved, err := tx.DeleteComponentTechnologiesByComponent(name)
		if err != nil {
			return nil, err
		}
		classRemoved, err := tx.DeleteClassComponentsByComponent(name)
		if err != nil {
			return nil, err
		}
		if err := tx.DeleteComponent(name); err != nil {
			return nil, err
		}
		payload["removed_technology_assignments"] = techRemoved
		payload["removed_class_links"] = classRemoved
		return payload, nil

	case entry.EntityType == EntityClassComponent && entry.Action == ActionRemove:
		className, err := payloadString(payload, "class_name")
		if err != nil {
			return nil, err
		}
		componentName, err := payloadString(payload, "component_name")
		if err != nil {
			return nil, err
		}
		if err := tx.DeleteClassComponent(className, componentName); err != nil {
			return nil, err
		}
		return payload, nil

	case entry.EntityType == EntityComponentTechnology && entry.Action == ActionRemove:
		componentName, err := payloadString(payload, "component_name")
		if err != nil {
			return nil, err
		}
		techCode, err := payloadString(payload, "technology_code")
		if err != nil {
			return nil, err
		}
		if err := tx.DeleteComponentTechnology(componentName, techCode); err != nil {
			return nil, err
		}
		return payload, nil

	case entry.EntityType == EntityComponentTechnology && entry.Action == ActionUpdate:
		componentName, err := payloadString(payload, "component_name")
		if err != nil {
			return nil, err
		}
		techCode, err := payloadString(payload, "technology_code")
		if err != nil {
			return nil, err
		}
		desired, err := payloadString(payload, "new_application_type")
		if err != nil {
			return nil, err
		}
		current, err := tx.GetComponentTechnology(componentName, techCode)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("assignment %s/%s: %w", componentName, techCode, ErrNotFound)
		}
		// Record the value actually replaced; it may differ from the one
		// captured when the request was queued.
		payload["old_application_type"] = string(current.ApplicationType)
		if err := tx.UpdateApplicationType(componentName, techCode, ApplicationType(desired)); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("entry %s: no handler for %s %s: %w",
			entry.ID, entry.Action, entry.EntityType, ErrInvalidState)
	}
}

// loadPending fetches an entry and verifies it is pending.
func loadPending(tx *ConfigStore, id string) (*ChangeLogEntry, error) {
	entry, err := tx.Log().Get(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("change log entry %s: %w", id, ErrInvalidState)
	}
	if entry.Status != StatusPending {
		return nil, fmt.Errorf("change log entry %s is %s, not pending: %w",
			id, entry.Status, ErrInvalidState)
	}
	return entry, nil
}

func newOutcome(id, successKind string, err error) BatchOutcome {
	if err != nil {
		return BatchOutcome{ID: id, Kind: ErrorKind(err), Error: err.Error()}
	}
	return BatchOutcome{ID: id, Kind: successKind}
}

func payloadString(payload JSONAny, key string) (string, error) {
	v, ok := payload[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("payload field %q missing or not a string: %w", key, ErrIntegrityViolation)
	}
	return v, nil
}
