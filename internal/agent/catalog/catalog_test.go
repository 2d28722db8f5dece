package catalog

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(
		Capability{Name: "create_meal"},
		Capability{Name: "create_meal"},
	)
	assert.Error(t, err)
}

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := New(Capability{})
	assert.Error(t, err)
}

func TestBuiltinLookup(t *testing.T) {
	c := Builtin()

	cap, ok := c.Get("create_health_metric")
	require.True(t, ok)
	assert.Equal(t, "create_health_metric", cap.Name)
	assert.NotEmpty(t, cap.ConfirmText)

	date, ok := cap.Field("date")
	require.True(t, ok)
	assert.True(t, date.Required)
	assert.Equal(t, FieldDate, date.Type)

	_, ok = c.Get("create_unicorn")
	assert.False(t, ok)
}

func TestNamesKeepRegistrationOrder(t *testing.T) {
	c := MustNew(
		Capability{Name: "b"},
		Capability{Name: "a"},
		Capability{Name: "c"},
	)
	assert.Equal(t, []string{"b", "a", "c"}, c.Names())
}

func TestToolInfos(t *testing.T) {
	c := Builtin()
	infos := c.ToolInfos()

	require.Len(t, infos, len(c.Names()))

	var workout *schema.ToolInfo
	for _, info := range infos {
		if info.Name == "create_workout" {
			workout = info
		}
	}
	require.NotNil(t, workout)
	assert.NotEmpty(t, workout.Desc)
	require.NotNil(t, workout.ParamsOneOf)

	params, err := workout.ParamsOneOf.ToOpenAPIV3()
	require.NoError(t, err)
	require.NotNil(t, params)

	typ, ok := params.Properties["type"]
	require.True(t, ok)
	assert.Equal(t, "string", typ.Value.Type)
	assert.Len(t, typ.Value.Enum, 5)

	duration, ok := params.Properties["duration_minutes"]
	require.True(t, ok)
	assert.Equal(t, "number", duration.Value.Type)

	assert.Contains(t, params.Required, "date")
	assert.Contains(t, params.Required, "type")
	assert.NotContains(t, params.Required, "intensity")
}
