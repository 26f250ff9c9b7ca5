package standard

import (
	"fmt"

	"github.com/google/uuid"
)

// Mutator is the immediate-apply editor surface. Its operations are
// additive or administrative: they insert master rows or upsert junction
// links, append an applied change-log entry, and commit both in one
// transaction. Nothing here removes data; removals and re-ratings go
// through the RequestQueue.
type Mutator struct {
	store *ConfigStore
}

// NewMutator creates a new Mutator.
func NewMutator(store *ConfigStore) *Mutator {
	return &Mutator{store: store}
}

// AddTechnology inserts a technology master row. Fails with ErrDuplicate
// if the code is already registered.
func (m *Mutator) AddTechnology(code, description, requestedBy string) (*ChangeLogEntry, error) {
	if code == "" {
		return nil, fmt.Errorf("technology code must not be empty")
	}
	entry := newAppliedEntry(EntityTechnology, code, ActionAdd, requestedBy, JSONAny{
		"technology_code": code,
		"description":     description,
	})
	err := m.store.Atomically(func(tx *ConfigStore) error {
		if err := tx.InsertTechnology(&Technology{Code: code, Description: description}); err != nil {
			return err
		}
		return tx.Log().Append(entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AddComponent inserts a component master row. Fails with ErrDuplicate if
// the name is already registered.
func (m *Mutator) AddComponent(name, requestedBy string) (*ChangeLogEntry, error) {
	if name == "" {
		return nil, fmt.Errorf("component name must not be empty")
	}
	entry := newAppliedEntry(EntityComponent, name, ActionAdd, requestedBy, JSONAny{
		"component_name": name,
	})
	err := m.store.Atomically(func(tx *ConfigStore) error {
		if err := tx.InsertComponent(&Component{Name: name}); err != nil {
			return err
		}
		return tx.Log().Append(entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AddClass inserts an asset class master row. Fails with ErrDuplicate if
// the name is already registered.
func (m *Mutator) AddClass(name, requestedBy string) (*ChangeLogEntry, error) {
	if name == "" {
		return nil, fmt.Errorf("class name must not be empty")
	}
	entry := newAppliedEntry(EntityClass, name, ActionAdd, requestedBy, JSONAny{
		"class_name": name,
	})
	err := m.store.Atomically(func(tx *ConfigStore) error {
		if err := tx.InsertClass(&AssetClass{Name: name}); err != nil {
			return err
		}
		return tx.Log().Append(entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AssignComponentToClass links a component into an asset class. Both
// master rows must exist. Re-linking an existing pair is a no-op upsert
// but is still logged.
func (m *Mutator) AssignComponentToClass(className, componentName, requestedBy string) (*ChangeLogEntry, error) {
	entry := newAppliedEntry(EntityClassComponent,
		junctionKey(className, componentName), ActionAdd, requestedBy, JSONAny{
			"class_name":     className,
			"component_name": componentName,
		})
	err := m.store.Atomically(func(tx *ConfigStore) error {
		if err := requireClass(tx, className); err != nil {
			return err
		}
		if err := requireComponent(tx, componentName); err != nil {
			return err
		}
		if err := tx.UpsertClassComponent(&ClassComponent{
			ClassName:     className,
			ComponentName: componentName,
		}); err != nil {
			return err
		}
		return tx.Log().Append(entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AssignTechnologyToComponent assigns a technology to a component with
// the given rating. Both master rows must exist. Assigning an existing
// pair overwrites the rating; the log entry then captures the old and new
// values. Re-assigning the rating a pair already carries is a no-op:
// nothing is written, no entry is logged, and nil, nil is returned.
// The direct overwrite is the admin bootstrap path — the editor surface
// routes re-ratings through RequestUpdateApplicationType instead.
func (m *Mutator) AssignTechnologyToComponent(componentName, techCode string, applicationType ApplicationType, requestedBy string) (*ChangeLogEntry, error) {
	if !applicationType.Valid() {
		return nil, fmt.Errorf("application type must be %s or %s, got %q",
			ApplicationPrimary, ApplicationSecondary, applicationType)
	}
	payload := JSONAny{
		"component_name":   componentName,
		"technology_code":  techCode,
		"application_type": string(applicationType),
	}
	entry := newAppliedEntry(EntityComponentTechnology,
		junctionKey(componentName, techCode), ActionAdd, requestedBy, payload)

	var unchanged bool
	err := m.store.Atomically(func(tx *ConfigStore) error {
		if err := requireComponent(tx, componentName); err != nil {
			return err
		}
		if err := requireTechnology(tx, techCode); err != nil {
			return err
		}
		existing, err := tx.GetComponentTechnology(componentName, techCode)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.ApplicationType == applicationType {
				unchanged = true
				return nil
			}
			entry.Action = ActionUpdate
			payload["old_application_type"] = string(existing.ApplicationType)
			payload["new_application_type"] = string(applicationType)
		}
		if err := tx.UpsertComponentTechnology(&ComponentTechnology{
			ComponentName:   componentName,
			TechnologyCode:  techCode,
			ApplicationType: applicationType,
		}); err != nil {
			return err
		}
		return tx.Log().Append(entry)
	})
	if err != nil {
		return nil, err
	}
	if unchanged {
		return nil, nil
	}
	return entry, nil
}

// newAppliedEntry builds a change-log entry with status applied.
func newAppliedEntry(entityType EntityType, entityKey string, action ChangeAction, requestedBy string, payload JSONAny) *ChangeLogEntry {
	if requestedBy == "" {
		requestedBy = "system"
	}
	return &ChangeLogEntry{
		ID:          uuid.New().String(),
		EntityType:  entityType,
		EntityKey:   entityKey,
		Action:      action,
		Payload:     payload,
		Status:      StatusApplied,
		RequestedBy: requestedBy,
	}
}

// junctionKey renders the composite key of a junction row for the
// entity_key column.
func junctionKey(left, right string) string {
	return left + "/" + right
}

func requireClass(tx *ConfigStore, name string) error {
	class, err := tx.GetClass(name)
	if err != nil {
		return err
	}
	if class == nil {
		return fmt.Errorf("class %q: %w", name, ErrNotFound)
	}
	return nil
}

func requireComponent(tx *ConfigStore, name string) error {
	comp, err := tx.GetComponent(name)
	if err != nil {
		return err
	}
	if comp == nil {
		return fmt.Errorf("component %q: %w", name, ErrNotFound)
	}
	return nil
}

func requireTechnology(tx *ConfigStore, code string) error {
	tech, err := tx.GetTechnology(code)
	if err != nil {
		return err
	}
	if tech == nil {
		return fmt.Errorf("technology %q: %w", code, ErrNotFound)
	}
	return nil
}
