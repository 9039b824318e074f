package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/models"
)

func TestAssignmentNotifierPayloads(t *testing.T) {
	project := models.Project{Title: "Ship v1", Status: "Open"}
	project.ID = 7
	assignee := models.User{Name: "Bobby Member"}

	tests := []struct {
		kind  string
		check func(t *testing.T, body map[string]any)
	}{
		{WebhookSlack, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "*Ship v1* was assigned to Bobby Member", body["text"])
			attachments := body["attachments"].([]any)
			require.Len(t, attachments, 1)
			assert.Equal(t, "https://taskdeck.example.com/projects/7", attachments[0].(map[string]any)["title_link"])
		}},
		{WebhookDiscord, func(t *testing.T, body map[string]any) {
			embeds := body["embeds"].([]any)
			require.Len(t, embeds, 1)
			embed := embeds[0].(map[string]any)
			assert.Equal(t, "Project assigned: Ship v1", embed["title"])
			assert.Equal(t, "https://taskdeck.example.com/projects/7", embed["url"])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var body map[string]any

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			notifier := NewAssignmentNotifier(server.URL, tt.kind, "https://taskdeck.example.com")

			require.NoError(t, notifier.Notify(context.Background(), project, assignee))
			assert.Equal(t, Username, body["username"])
			tt.check(t, body)
		})
	}
}

func TestAssignmentNotifierFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewAssignmentNotifier(server.URL, WebhookSlack, "").Notify(context.Background(), models.Project{}, models.User{})
	assert.ErrorContains(t, err, "status 502")

	err = NewAssignmentNotifier(server.URL, "teams", "").Notify(context.Background(), models.Project{}, models.User{})
	assert.ErrorContains(t, err, "unknown webhook kind")
}
