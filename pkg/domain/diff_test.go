package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &State{
				SessionID:    "sess-1",
				CurrentIndex: 0,
				Validated:    []bool{false, false},
				Indicators:   []IndicatorState{IndicatorActive, IndicatorPending},
			},
			wantDiff: &StateDiff{
				SessionID:    "sess-1",
				CurrentIndex: intPtr(0),
				Indicators:   map[int]IndicatorState{0: IndicatorActive, 1: IndicatorPending},
			},
		},
		{
			name: "No Changes",
			old: &State{
				SessionID:  "sess-1",
				Validated:  []bool{false, false},
				Indicators: []IndicatorState{IndicatorActive, IndicatorPending},
			},
			new: &State{
				SessionID:  "sess-1",
				Validated:  []bool{false, false},
				Indicators: []IndicatorState{IndicatorActive, IndicatorPending},
			},
			wantDiff: nil,
		},
		{
			name: "Advance",
			old: &State{
				SessionID:  "sess-1",
				Validated:  []bool{false, false, false},
				Indicators: []IndicatorState{IndicatorActive, IndicatorPending, IndicatorPending},
			},
			new: &State{
				SessionID:     "sess-1",
				CurrentIndex:  1,
				PreviousIndex: intPtr(0),
				Validated:     []bool{true, false, false},
				Indicators:    []IndicatorState{IndicatorCompleted, IndicatorActive, IndicatorPending},
			},
			wantDiff: &StateDiff{
				SessionID:     "sess-1",
				CurrentIndex:  intPtr(1),
				PreviousIndex: intPtr(0),
				Indicators:    map[int]IndicatorState{0: IndicatorCompleted, 1: IndicatorActive},
				Validated:     []int{0},
			},
		},
		{
			name: "Retreat To First Clears Previous",
			old: &State{
				SessionID:     "sess-1",
				CurrentIndex:  1,
				PreviousIndex: intPtr(0),
				Validated:     []bool{true, false},
				Indicators:    []IndicatorState{IndicatorCompleted, IndicatorActive},
			},
			new: &State{
				SessionID:  "sess-1",
				Validated:  []bool{true, false},
				Indicators: []IndicatorState{IndicatorActive, IndicatorPending},
			},
			wantDiff: &StateDiff{
				SessionID:       "sess-1",
				CurrentIndex:    intPtr(0),
				PreviousCleared: true,
				Indicators:      map[int]IndicatorState{0: IndicatorActive, 1: IndicatorPending},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}
			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestDiff_JSONShape(t *testing.T) {
	old := NewState("s", "f", 2)
	next := old.Snapshot()
	next.CurrentIndex = 1
	next.PreviousIndex = intPtr(0)
	next.Validated[0] = true
	next.Indicators = []IndicatorState{IndicatorCompleted, IndicatorActive}

	b, err := json.Marshal(Diff(old, next))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"current_index":1`, `"0":"completed"`, `"1":"active"`, `"validated":[0]`} {
		if !strings.Contains(out, want) {
			t.Errorf("json %s missing %s", out, want)
		}
	}
	if strings.Contains(out, "previous_cleared") {
		t.Errorf("json %s should omit previous_cleared", out)
	}
}

func TestState_SnapshotIsDeep(t *testing.T) {
	s := NewState("s", "f", 3)
	s.PreviousIndex = intPtr(0)
	s.Metadata["k"] = "v"

	cp := s.Snapshot()
	cp.Validated[0] = true
	cp.Indicators[1] = IndicatorActive
	*cp.PreviousIndex = 2
	cp.Metadata["k"] = "changed"

	if s.Validated[0] || s.Indicators[1] != IndicatorPending || *s.PreviousIndex != 0 || s.Metadata["k"] != "v" {
		t.Errorf("snapshot shares memory with original: %+v", s)
	}
}
