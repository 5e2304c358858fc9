package notifier

import (
	"context"
	"log/slog"

	"github.com/resumeai/enhancer/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes upsell events to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each event via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each event. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, events []model.UpsellEvent) error {
	for _, e := range events {
		n.logger.Info("upsell shown",
			"session", e.SessionID,
			"reason", e.Reason,
			"analyses", e.Analyses,
			"at", e.At,
		)
	}
	return nil
}
