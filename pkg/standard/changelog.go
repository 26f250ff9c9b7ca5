package standard

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ChangeStatus is the review status of a change-log entry.
type ChangeStatus string

const (
	StatusApplied  ChangeStatus = "applied"
	StatusPending  ChangeStatus = "pending"
	StatusApproved ChangeStatus = "approved"
	StatusRejected ChangeStatus = "rejected"
)

// EntityType names the table a change-log entry targets.
type EntityType string

const (
	EntityComponent           EntityType = "component"
	EntityTechnology          EntityType = "technology"
	EntityClass               EntityType = "class"
	EntityClassComponent      EntityType = "class_component"
	EntityComponentTechnology EntityType = "component_technology"
)

// ChangeAction is the kind of change an entry records.
type ChangeAction string

const (
	ActionAdd    ChangeAction = "add"
	ActionRemove ChangeAction = "remove"
	ActionUpdate ChangeAction = "update"
)

// ChangeLogEntry is one row of the append-only change log. Entries are
// created as applied (immediate mutations) or pending (gated requests).
// A pending entry is mutated exactly once, by the approval engine, to
// approved or rejected; no entry is ever deleted.
type ChangeLogEntry struct {
	ID          string       `gorm:"primaryKey;column:id;type:varchar(36)"`
	EntityType  EntityType   `gorm:"column:entity_type;index:idx_changelog_entity,priority:1;not null"`
	EntityKey   string       `gorm:"column:entity_key;index:idx_changelog_entity,priority:2;not null"`
	Action      ChangeAction `gorm:"column:action;not null"`
	Payload     JSONAny      `gorm:"column:payload;type:text"`
	Status      ChangeStatus `gorm:"column:status;index:idx_changelog_status;not null"`
	Notes       string       `gorm:"column:notes"`
	RequestedBy string       `gorm:"column:requested_by;not null"`
	ReviewedBy  string       `gorm:"column:reviewed_by"`
	ReviewNote  string       `gorm:"column:review_note"`
	ReviewedAt  *time.Time   `gorm:"column:reviewed_at"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (ChangeLogEntry) TableName() string { return "change_log" }

// ChangeLog provides append-only operations over the change_log table.
type ChangeLog struct {
	db *gorm.DB
}

// NewChangeLog creates a new ChangeLog.
func NewChangeLog(db *gorm.DB) *ChangeLog {
	return &ChangeLog{db: db}
}

// Append creates a new change-log entry.
func (l *ChangeLog) Append(entry *ChangeLogEntry) error {
	if err := l.db.Create(entry).Error; err != nil {
		return fmt.Errorf("append change log entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by id. Returns nil, nil if no entry exists.
func (l *ChangeLog) Get(id string) (*ChangeLogEntry, error) {
	var entry ChangeLogEntry
	if err := l.db.Where("id = ?", id).First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get change log entry: %w", err)
	}
	return &entry, nil
}

// PendingFilter narrows ListPending to entries of one entity type and/or
// action. Zero values match everything.
type PendingFilter struct {
	EntityType EntityType
	Action     ChangeAction
}

// ListPending returns all pending entries matching the filter, oldest
// first. Duplicate requests against the same target are all surfaced;
// the queue performs no deduplication.
func (l *ChangeLog) ListPending(filter PendingFilter) ([]ChangeLogEntry, error) {
	query := l.db.Where("status = ?", StatusPending).Order("created_at ASC")
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	var entries []ChangeLogEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	return entries, nil
}

// List returns paginated entries for an entity key (or all entries when
// entityKey is empty), newest first. pageToken is an RFC3339Nano
// timestamp; entries created before it are returned.
func (l *ChangeLog) List(entityKey string, pageSize int, pageToken string) ([]ChangeLogEntry, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	baseQuery := l.db.Model(&ChangeLogEntry{})
	if entityKey != "" {
		baseQuery = baseQuery.Where("entity_key = ?", entityKey)
	}

	var totalSize int64
	if err := baseQuery.Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count change log entries: %w", err)
	}

	query := l.db.Order("created_at DESC").Limit(pageSize + 1)
	if entityKey != "" {
		query = query.Where("entity_key = ?", entityKey)
	}
	if pageToken != "" {
		t, err := time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", 0, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.Where("created_at < ?", t)
	}

	var entries []ChangeLogEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list change log entries: %w", err)
	}

	var nextToken string
	if len(entries) > pageSize {
		nextToken = entries[pageSize-1].CreatedAt.Format(time.RFC3339Nano)
		entries = entries[:pageSize]
	}

	return entries, nextToken, int(totalSize), nil
}

// finalize transitions a pending entry to approved or rejected, recording
// the reviewer. The status guard in the WHERE clause makes double review
// fail with RowsAffected == 0 even under concurrent engines.
func (l *ChangeLog) finalize(id string, status ChangeStatus, reviewedBy, reviewNote string, payload JSONAny) error {
	now := time.Now()
	updates := map[string]any{
		"status":      string(status),
		"reviewed_by": reviewedBy,
		"review_note": reviewNote,
		"reviewed_at": &now,
	}
	if payload != nil {
		updates["payload"] = payload
	}
	result := l.db.Model(&ChangeLogEntry{}).
		Where("id = ? AND status = ?", id, string(StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("finalize change log entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("change log entry %s is not pending: %w", id, ErrInvalidState)
	}
	return nil
}
