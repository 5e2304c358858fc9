package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/resumeai/enhancer/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts upsell events to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each event to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends each event as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail; the last failure is returned so
// a retry decorator can inspect it. Individual failures are logged.
func (s *SlackNotifier) Notify(ctx context.Context, events []model.UpsellEvent) error {
	if len(events) == 0 {
		return nil
	}

	failures := 0
	var lastErr error
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("slack notifications cancelled: %w", err)
		}
		if err := s.sendMessage(ctx, e); err != nil {
			s.logger.Error("slack notification failed", "session", e.SessionID, "reason", e.Reason, "error", err)
			failures++
			lastErr = err
		}
	}

	if failures == len(events) {
		return fmt.Errorf("all %d slack notifications failed: %w", failures, lastErr)
	}
	s.logger.Info("slack notifications complete", "sent", len(events)-failures, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(ctx context.Context, e model.UpsellEvent) error {
	body, err := json.Marshal(buildPayload(e))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		httpErr := &model.HTTPError{StatusCode: resp.StatusCode, Err: fmt.Errorf("slack webhook rejected message")}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			httpErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return httpErr
	}
	s.logger.Debug("slack message sent", "session", e.SessionID, "reason", e.Reason)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a dummy upsell event with the given reason to verify
// the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier, reason string) error {
	return n.Notify(ctx, []model.UpsellEvent{{
		SessionID: "test-session",
		Reason:    reason,
		Analyses:  1,
		At:        time.Now(),
	}})
}

func headline(reason string) string {
	switch reason {
	case model.ReasonRepeatAttempt:
		return "👑 Visitor tried a second analysis"
	case model.ReasonUnlock:
		return "👑 Visitor clicked Unlock Full AI Power"
	default:
		return "👑 Upsell shown"
	}
}

func buildPayload(e model.UpsellEvent) slackPayload {
	return slackPayload{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: headline(e.Reason)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Session:*\n" + e.SessionID},
				{Type: "mrkdwn", Text: "*Free analyses used:*\n" + strconv.Itoa(e.Analyses)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Reason:*\n" + e.Reason},
				{Type: "mrkdwn", Text: "*At:*\n" + e.At.UTC().Format(time.RFC1123)},
			},
		},
		{Type: "divider"},
	}}
}
