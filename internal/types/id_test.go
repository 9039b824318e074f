package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		ProjectID ID `json:"projectId"`
		TaskID    ID `json:"taskId"`
		Missing   ID `json:"missing"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"projectId": 12, "taskId": "34", "missing": null}`), &body))

	assert.Equal(t, uint(12), body.ProjectID.Uint())
	assert.Equal(t, uint(34), body.TaskID.Uint())
	assert.Zero(t, body.Missing)
}

func TestIDRejectsGarbage(t *testing.T) {
	var id ID

	assert.Error(t, json.Unmarshal([]byte(`"twelve"`), &id))
	assert.Error(t, json.Unmarshal([]byte(`-4`), &id))
	assert.Error(t, id.UnmarshalParam("1.5"))

	require.NoError(t, id.UnmarshalParam(""))
	assert.Zero(t, id)
}
