package connector

import (
	"fmt"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeSetScalars(t *testing.T) {
	attrs := NewAttributeSet().
		Set(AttrDisplayName, "Bud Coke").
		Set(AttrAccountEnabled, true).
		Set(AttrConsumedUnits, 12)

	name, err := attrs.String(AttrDisplayName)
	require.NoError(t, err)
	assert.Equal(t, "Bud Coke", name)

	enabled, err := attrs.Bool(AttrAccountEnabled)
	require.NoError(t, err)
	require.NotNil(t, enabled)
	assert.True(t, *enabled)

	units, err := attrs.Int(AttrConsumedUnits)
	require.NoError(t, err)
	assert.Equal(t, 12, units)
}

func TestAttributeSetAbsentValues(t *testing.T) {
	attrs := NewAttributeSet()

	name, err := attrs.String(AttrDisplayName)
	require.NoError(t, err)
	assert.Equal(t, "", name)

	enabled, err := attrs.Bool(AttrAccountEnabled)
	require.NoError(t, err)
	assert.Nil(t, enabled)

	values, err := attrs.Strings(AttrSkills)
	require.NoError(t, err)
	assert.Nil(t, values)
}

func TestAttributeSetRemovalByEmptySet(t *testing.T) {
	attrs := NewAttributeSet().Set(AttrCity, "Oslo")
	assert.True(t, attrs.Has(AttrCity))

	attrs.Set(AttrCity)
	assert.False(t, attrs.Has(AttrCity))
}

func TestAttributeSetTypeMismatch(t *testing.T) {
	attrs := NewAttributeSet().Set(AttrDisplayName, 42)
	_, err := attrs.String(AttrDisplayName)
	assert.Error(t, err)
}

func TestAttributeSetRejectsMultipleScalarValues(t *testing.T) {
	attrs := NewAttributeSet().Set(AttrDisplayName, "a", "b")
	_, err := attrs.String(AttrDisplayName)
	assert.Error(t, err)
}

func TestAttributeSetIntCoercion(t *testing.T) {
	tests := []struct {
		value   any
		want    int
		wantErr bool
	}{
		{7, 7, false},
		{int64(8), 8, false},
		{float64(9), 9, false},
		{"10", 10, false},
		{"ten", 0, true},
		{true, 0, true},
	}
	for _, tt := range tests {
		attrs := NewAttributeSet().Set(AttrConsumedUnits, tt.value)
		got, err := attrs.Int(AttrConsumedUnits)
		if tt.wantErr {
			assert.Error(t, err, "value %v", tt.value)
			continue
		}
		require.NoError(t, err, "value %v", tt.value)
		assert.Equal(t, tt.want, got, "value %v", tt.value)
	}
}

func TestGuardedStringNeverLeaks(t *testing.T) {
	secret := NewGuardedString("D8weoIru#4")

	assert.Equal(t, "********", secret.String())
	assert.Equal(t, "********", fmt.Sprintf("%v", secret))
	assert.Equal(t, "********", fmt.Sprintf("%#v", secret))

	data, err := gojson.Marshal(secret)
	require.NoError(t, err)
	assert.Equal(t, `"********"`, string(data))

	assert.Equal(t, "D8weoIru#4", secret.Reveal())
}

func TestGuardedPromotesPlainStrings(t *testing.T) {
	attrs := NewAttributeSet().Set(AttrPassword, "hunter2")
	g, err := attrs.Guarded(AttrPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", g.Reveal())

	attrs.Set(AttrPassword, NewGuardedString("hunter3"))
	g, err = attrs.Guarded(AttrPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter3", g.Reveal())
}
