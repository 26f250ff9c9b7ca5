package standard

import (
	"fmt"

	"github.com/google/uuid"
)

// RequestQueue is the gated editor surface. Every operation validates its
// target, appends a pending change-log entry, and returns the entry id
// for later reference by the approval engine. Nothing here mutates the
// data tables, and multiple pending requests against the same target may
// coexist.
type RequestQueue struct {
	store *ConfigStore
}

// NewRequestQueue creates a new RequestQueue.
func NewRequestQueue(store *ConfigStore) *RequestQueue {
	return &RequestQueue{store: store}
}

// RequestRemoveComponent queues removal of a component and all of its
// junction rows. The payload carries an impact summary (linked classes
// and technology assignments) for the admin review.
func (q *RequestQueue) RequestRemoveComponent(componentName, requestedBy, reason string) (*ChangeLogEntry, error) {
	if err := requireComponent(q.store, componentName); err != nil {
		return nil, err
	}

	classLinks, err := q.store.ClassComponentsByComponent(componentName)
	if err != nil {
		return nil, err
	}
	classes := make([]string, len(classLinks))
	for i, link := range classLinks {
		classes[i] = link.ClassName
	}

	techRows, err := q.store.ComponentTechnologiesByComponent(componentName)
	if err != nil {
		return nil, err
	}
	assignments := make([]map[string]string, len(techRows))
	for i, row := range techRows {
		assignments[i] = map[string]string{
			"technology_code":  row.TechnologyCode,
			"application_type": string(row.ApplicationType),
		}
	}

	entry := newPendingEntry(EntityComponent, componentName, ActionRemove, requestedBy, reason, JSONAny{
		"component_name": componentName,
		"impact": map[string]any{
			"assigned_to_classes":    classes,
			"technology_assignments": assignments,
		},
	})
	if err := q.store.Log().Append(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RequestRemoveClassComponent queues removal of one class-component link.
func (q *RequestQueue) RequestRemoveClassComponent(className, componentName, requestedBy, reason string) (*ChangeLogEntry, error) {
	if err := requireClass(q.store, className); err != nil {
		return nil, err
	}
	if err := requireComponent(q.store, componentName); err != nil {
		return nil, err
	}
	link, err := q.store.GetClassComponent(className, componentName)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("link %s/%s: %w", className, componentName, ErrNotFound)
	}

	entry := newPendingEntry(EntityClassComponent,
		junctionKey(className, componentName), ActionRemove, requestedBy, reason, JSONAny{
			"class_name":     className,
			"component_name": componentName,
		})
	if err := q.store.Log().Append(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RequestRemoveComponentTechnology queues removal of one
// component-technology assignment.
func (q *RequestQueue) RequestRemoveComponentTechnology(componentName, techCode, requestedBy, reason string) (*ChangeLogEntry, error) {
	if err := requireComponent(q.store, componentName); err != nil {
		return nil, err
	}
	if err := requireTechnology(q.store, techCode); err != nil {
		return nil, err
	}
	row, err := q.store.GetComponentTechnology(componentName, techCode)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("assignment %s/%s: %w", componentName, techCode, ErrNotFound)
	}

	entry := newPendingEntry(EntityComponentTechnology,
		junctionKey(componentName, techCode), ActionRemove, requestedBy, reason, JSONAny{
			"component_name":   componentName,
			"technology_code":  techCode,
			"application_type": string(row.ApplicationType),
		})
	if err := q.store.Log().Append(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RequestUpdateApplicationType queues a rating change for an existing
// assignment. The payload captures both the current and the desired
// value so the admin review shows the full transition.
func (q *RequestQueue) RequestUpdateApplicationType(componentName, techCode string, desired ApplicationType, requestedBy, reason string) (*ChangeLogEntry, error) {
	if !desired.Valid() {
		return nil, fmt.Errorf("application type must be %s or %s, got %q",
			ApplicationPrimary, ApplicationSecondary, desired)
	}
	if err := requireComponent(q.store, componentName); err != nil {
		return nil, err
	}
	if err := requireTechnology(q.store, techCode); err != nil {
		return nil, err
	}
	row, err := q.store.GetComponentTechnology(componentName, techCode)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("assignment %s/%s: %w", componentName, techCode, ErrNotFound)
	}

	entry := newPendingEntry(EntityComponentTechnology,
		junctionKey(componentName, techCode), ActionUpdate, requestedBy, reason, JSONAny{
			"component_name":       componentName,
			"technology_code":      techCode,
			"old_application_type": string(row.ApplicationType),
			"new_application_type": string(desired),
		})
	if err := q.store.Log().Append(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListPending returns the pending entries matching the filter, oldest
// first.
func (q *RequestQueue) ListPending(filter PendingFilter) ([]ChangeLogEntry, error) {
	return q.store.Log().ListPending(filter)
}

// newPendingEntry builds a change-log entry with status pending.
func newPendingEntry(entityType EntityType, entityKey string, action ChangeAction, requestedBy, reason string, payload JSONAny) *ChangeLogEntry {
	if requestedBy == "" {
		requestedBy = "system"
	}
	return &ChangeLogEntry{
		ID:          uuid.New().String(),
		EntityType:  entityType,
		EntityKey:   entityKey,
		Action:      action,
		Payload:     payload,
		Status:      StatusPending,
		Notes:       reason,
		RequestedBy: requestedBy,
	}
}
