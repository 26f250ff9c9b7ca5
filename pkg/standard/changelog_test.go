package standard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendEntry(t *testing.T, log *ChangeLog, entry *ChangeLogEntry) *ChangeLogEntry {
	t.Helper()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.RequestedBy == "" {
		entry.RequestedBy = "tester"
	}
	require.NoError(t, log.Append(entry))
	return entry
}

func TestChangeLog_AppendAndGet(t *testing.T) {
	log := newTestStore(t).Log()

	entry := appendEntry(t, log, &ChangeLogEntry{
		EntityType: EntityComponent,
		EntityKey:  "Pump Unit",
		Action:     ActionAdd,
		Status:     StatusApplied,
		Payload:    JSONAny{"component_name": "Pump Unit"},
	})

	got, err := log.Get(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, EntityComponent, got.EntityType)
	assert.Equal(t, StatusApplied, got.Status)
	assert.Equal(t, "Pump Unit", got.Payload["component_name"])
	assert.False(t, got.CreatedAt.IsZero())

	got, err = log.Get(uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChangeLog_ListPendingFilter(t *testing.T) {
	log := newTestStore(t).Log()

	first := appendEntry(t, log, &ChangeLogEntry{
		EntityType: EntityComponent,
		EntityKey:  "Pump Unit",
		Action:     ActionRemove,
		Status:     StatusPending,
	})
	time.Sleep(2 * time.Millisecond)
	appendEntry(t, log, &ChangeLogEntry{
		EntityType: EntityComponentTechnology,
		EntityKey:  "Pump Unit/VIB",
		Action:     ActionUpdate,
		Status:     StatusPending,
	})
	appendEntry(t, log, &ChangeLogEntry{
		EntityType: EntityComponent,
		EntityKey:  "Coupling",
		Action:     ActionAdd,
		Status:     StatusApplied,
	})

	// Unfiltered: both pending entries, oldest first; applied excluded.
	pending, err := log.ListPending(PendingFilter{})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)

	pending, err = log.ListPending(PendingFilter{EntityType: EntityComponentTechnology})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ActionUpdate, pending[0].Action)

	pending, err = log.ListPending(PendingFilter{Action: ActionRemove})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)
}

func TestChangeLog_ListPagination(t *testing.T) {
	log := newTestStore(t).Log()

	for i := 0; i < 5; i++ {
		appendEntry(t, log, &ChangeLogEntry{
			EntityType: EntityComponent,
			EntityKey:  "Pump Unit",
			Action:     ActionAdd,
			Status:     StatusApplied,
		})
		time.Sleep(2 * time.Millisecond)
	}

	entries, nextToken, total, err := log.List("Pump Unit", 3, "")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, entries, 3)
	require.NotEmpty(t, nextToken)

	// Newest first.
	assert.True(t, entries[0].CreatedAt.After(entries[2].CreatedAt))

	rest, nextToken, total, err := log.List("Pump Unit", 3, nextToken)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rest, 2)
	assert.Empty(t, nextToken)

	_, _, _, err = log.List("Pump Unit", 3, "not-a-timestamp")
	require.Error(t, err)
}

func TestChangeLog_FinalizeGuardsStatus(t *testing.T) {
	log := newTestStore(t).Log()

	entry := appendEntry(t, log, &ChangeLogEntry{
		EntityType: EntityComponent,
		EntityKey:  "Pump Unit",
		Action:     ActionRemove,
		Status:     StatusPending,
	})

	require.NoError(t, log.finalize(entry.ID, StatusRejected, "admin", "not yet", nil))

	got, err := log.Get(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "admin", got.ReviewedBy)
	assert.Equal(t, "not yet", got.ReviewNote)
	require.NotNil(t, got.ReviewedAt)

	// A decided entry cannot be decided again.
	err = log.finalize(entry.ID, StatusApproved, "admin", "", nil)
	require.ErrorIs(t, err, ErrInvalidState)
}
