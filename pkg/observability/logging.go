package observability

import (
	"log/slog"

	"github.com/aretw0/progressforms/pkg/domain"
)

// LogCallbacks writes one structured line per navigator event.
func LogCallbacks(logger *slog.Logger) domain.Callbacks {
	return domain.Callbacks{
		OnNext: func(left, entered domain.Panel) {
			logger.Info("panel_next", "from", left.ID, "to", entered.ID)
		},
		OnPrev: func(left, entered domain.Panel) {
			logger.Info("panel_prev", "from", left.ID, "to", entered.ID)
		},
		OnValidationFailed: func(ref domain.FieldRef) {
			logger.Info("validation_failed", "panel_id", ref.PanelID, "field", ref.Name, "group", ref.Group)
		},
		OnLastPanelEntered: func() {
			logger.Info("last_panel_entered")
		},
	}
}
