package standard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationType(t *testing.T) {
	assert.True(t, ApplicationPrimary.Valid())
	assert.True(t, ApplicationSecondary.Valid())
	assert.False(t, ApplicationType("").Valid())
	assert.False(t, ApplicationType("Tertiary").Valid())

	assert.True(t, ApplicationPrimary.Outranks(ApplicationSecondary))
	assert.False(t, ApplicationSecondary.Outranks(ApplicationPrimary))
	assert.False(t, ApplicationPrimary.Outranks(ApplicationPrimary))
	assert.False(t, ApplicationSecondary.Outranks(ApplicationSecondary))
}

func TestJSONAnyRoundTrip(t *testing.T) {
	payload := JSONAny{
		"component_name": "Pump Unit",
		"count":          float64(3),
	}

	value, err := payload.Value()
	require.NoError(t, err)

	var scanned JSONAny
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, payload, scanned)

	var nilPayload JSONAny
	value, err = nilPayload.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)

	require.Error(t, scanned.Scan(42))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "not_found", ErrorKind(fmt.Errorf("component %q: %w", "Shaft", ErrNotFound)))
	assert.Equal(t, "duplicate", ErrorKind(ErrDuplicate))
	assert.Equal(t, "invalid_state", ErrorKind(ErrInvalidState))
	assert.Equal(t, "integrity_violation", ErrorKind(ErrIntegrityViolation))
	assert.Equal(t, "internal", ErrorKind(assert.AnError))
}
