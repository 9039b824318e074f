package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	URL         string                `json:"url,omitempty"`
	Fields      []DiscordWebhookField `json:"fields"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	TitleLink string       `json:"title_link,omitempty"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	WebhookSlack   = "slack"
	WebhookDiscord = "discord"

	colorBlue = 3447003
	Username  = "Taskdeck"
)

// AssignmentNotifier posts a chat message when a project gets a new assignee.
type AssignmentNotifier struct {
	webhookURL string
	kind       string
	baseURL    string
	client     *http.Client
}

func NewAssignmentNotifier(webhookURL, kind, baseURL string) *AssignmentNotifier {
	return &AssignmentNotifier{
		webhookURL: webhookURL,
		kind:       kind,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *AssignmentNotifier) Notify(ctx context.Context, project models.Project, assignee models.User) error {
	link := fmt.Sprintf("%s/projects/%d", n.baseURL, project.ID)
	description := ""
	if project.Description != nil {
		description = *project.Description
	}

	var payload any

	switch n.kind {
	case WebhookDiscord:
		payload = DiscordWebhookRequest{
			Username: Username,
			Embeds: []DiscordEmbed{
				{
					Title:       fmt.Sprintf("Project assigned: %s", project.Title),
					Description: description,
					Color:       colorBlue,
					URL:         link,
					Fields: []DiscordWebhookField{
						{Name: "Assignee", Value: assignee.Name, Inline: true},
						{Name: "Status", Value: project.Status, Inline: true},
					},
					Timestamp: time.Now().Format(time.RFC3339),
				},
			},
		}
	case WebhookSlack:
		payload = SlackWebhookRequest{
			Username: Username,
			Text:     fmt.Sprintf("*%s* was assigned to %s", project.Title, assignee.Name),
			Attachments: []SlackAttachment{
				{
					Color:     "#3498db",
					Title:     project.Title,
					TitleLink: link,
					Text:      description,
					Fields: []SlackField{
						{Title: "Assignee", Value: assignee.Name, Short: true},
						{Title: "Status", Value: project.Status, Short: true},
					},
					Timestamp: time.Now().Unix(),
				},
			},
		}
	default:
		return fmt.Errorf("unknown webhook kind %q", n.kind)
	}

	return n.send(ctx, payload)
}

// Hook adapts the notifier to Hooks.ProjectAssigned; delivery happens off the request path.
func (n *AssignmentNotifier) Hook() func(models.Project, models.User) {
	return func(project models.Project, assignee models.User) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := n.Notify(ctx, project, assignee); err != nil {
				slog.Warn("Failed to send assignment notification",
					slog.Uint64("project_id", uint64(project.ID)),
					slog.Any("error", err),
				)
			}
		}()
	}
}

func (n *AssignmentNotifier) send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", n.kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", n.kind, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s webhook: %w", n.kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s webhook returned status %d", n.kind, resp.StatusCode)
	}

	return nil
}
