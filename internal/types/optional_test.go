package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Description Optional[string] `json:"description"`
	AssigneeID  Optional[uint]   `json:"assignedToId"`
}

func TestOptionalDistinguishesOmittedNullAndValue(t *testing.T) {
	var p patch

	require.NoError(t, json.Unmarshal([]byte(`{"description": null, "assignedToId": 7}`), &p))

	assert.True(t, p.Description.Set)
	assert.True(t, p.Description.Null)
	assert.Nil(t, p.Description.Ptr())

	assert.True(t, p.AssigneeID.Set)
	assert.False(t, p.AssigneeID.Null)
	require.NotNil(t, p.AssigneeID.Ptr())
	assert.Equal(t, uint(7), *p.AssigneeID.Ptr())
}

func TestOptionalOmittedFieldStaysUnset(t *testing.T) {
	var p patch

	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

	assert.False(t, p.Description.Set)
	assert.False(t, p.AssigneeID.Set)
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var p patch

	err := json.Unmarshal([]byte(`{"assignedToId": "seven"}`), &p)

	assert.Error(t, err)
}

func TestStatusValues(t *testing.T) {
	assert.True(t, IsStatus(StatusInProgress))
	assert.False(t, IsStatus(StatusDone))
	assert.True(t, IsProjectCreateStatus(StatusDone))
	assert.False(t, IsProjectCreateStatus("Archived"))
	assert.True(t, IsPriority(PriorityHigh))
	assert.False(t, IsPriority("urgent"))
}
