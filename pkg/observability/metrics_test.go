package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/progressforms/internal/runtime"
	"github.com/aretw0/progressforms/pkg/adapters/memory"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/observability"
)

func form() *domain.Form {
	return &domain.Form{
		ID:       "signup",
		Settings: domain.DefaultSettings(),
		Panels: []domain.Panel{
			{ID: "account", Fields: []domain.Field{{Name: "email", Required: true}}},
			{ID: "done"},
		},
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	require.NoError(t, m.RegisterActiveSessions(func() float64 { return 3 }))

	in := memory.NewInspector(nil)
	nav, err := runtime.NewNavigator(form(), in, runtime.WithCallbacks(m.Callbacks()))
	require.NoError(t, err)

	m.ObserveTransition(nav.Advance())
	in.Set("email", "ada@example.com")
	m.ObserveTransition(nav.Advance())
	m.ObserveTransition(nav.Advance())

	expected := `
# HELP progressforms_transitions_total Navigation requests by outcome
# TYPE progressforms_transitions_total counter
progressforms_transitions_total{kind="advanced"} 1
progressforms_transitions_total{kind="blocked"} 1
progressforms_transitions_total{kind="noop"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "progressforms_transitions_total"))


	expected = `
# HELP progressforms_last_panel_entered_total Times the last panel was reached
# TYPE progressforms_last_panel_entered_total counter
progressforms_last_panel_entered_total 1
# HELP progressforms_validation_failures_total Blocked forward steps by blamed field
# TYPE progressforms_validation_failures_total counter
progressforms_validation_failures_total{field="email",panel_id="account"} 1
# HELP progressforms_panel_entered_total Times a panel became current
# TYPE progressforms_panel_entered_total counter
progressforms_panel_entered_total{panel_id="done"} 1
# HELP progressforms_sessions_in_flight Session operations currently holding a lock
# TYPE progressforms_sessions_in_flight gauge
progressforms_sessions_in_flight 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected),
		"progressforms_last_panel_entered_total",
		"progressforms_validation_failures_total",
		"progressforms_panel_entered_total",
		"progressforms_sessions_in_flight",
	))

	t.Run("Duplicate Registration Fails", func(t *testing.T) {
		_, err := observability.NewMetrics(reg)
		assert.Error(t, err)
	})
}

func TestLogCallbacks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	nav, err := runtime.NewNavigator(form(), memory.NewInspector(map[string]any{"email": "x"}),
		runtime.WithCallbacks(observability.LogCallbacks(logger)))
	require.NoError(t, err)
	nav.Advance()

	out := buf.String()
	assert.Contains(t, out, `"msg":"panel_next"`)
	assert.Contains(t, out, `"to":"done"`)
	assert.Contains(t, out, `"msg":"last_panel_entered"`)
}
