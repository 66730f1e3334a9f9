package tests

import (
	"context"
	"testing"

	"github.com/aretw0/progressforms/pkg/ports"
)

// FormLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.FormLoader.
// wantIDs lists the panel IDs the loader must return, in order.
func FormLoaderContractTest(t *testing.T, loader ports.FormLoader, wantIDs []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadForm_Order", func(t *testing.T) {
		form, err := loader.LoadForm(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading form: %v", err)
		}
		ids := form.PanelIDs()
		if len(ids) != len(wantIDs) {
			t.Fatalf("expected %d panels, got %d (%v)", len(wantIDs), len(ids), ids)
		}
		for i, id := range wantIDs {
			if ids[i] != id {
				t.Errorf("panel %d: got %q, want %q", i, ids[i], id)
			}
		}
	})

	t.Run("LoadForm_Indexes", func(t *testing.T) {
		form, err := loader.LoadForm(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading form: %v", err)
		}
		for i, p := range form.Panels {
			if p.Index != i {
				t.Errorf("panel %s: index %d, want %d", p.ID, p.Index, i)
			}
			if p.PreviouslyValidated {
				t.Errorf("panel %s: loaded as previously validated", p.ID)
			}
		}
	})

	t.Run("LoadForm_Fresh", func(t *testing.T) {
		a, err := loader.LoadForm(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading form: %v", err)
		}
		if len(a.Panels) == 0 {
			return
		}
		a.Panels[0].ID = "mutated"
		b, err := loader.LoadForm(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading form: %v", err)
		}
		if b.Panels[0].ID == "mutated" {
			t.Error("loader returned shared panel slice")
		}
	})
}
