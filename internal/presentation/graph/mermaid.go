package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/progressforms/pkg/domain"
)

// Overlay marks navigation progress on the diagram.
type Overlay struct {
	Current    int
	Indicators []domain.IndicatorState
}

// OverlayFromState builds an overlay from a stored snapshot.
func OverlayFromState(s *domain.State) *Overlay {
	if s == nil {
		return nil
	}
	return &Overlay{Current: s.CurrentIndex, Indicators: s.Indicators}
}

// GenerateMermaid produces a Mermaid flowchart of the form: one node per panel
// in order, listing required fields and groups, with the forward path as solid
// arrows. Indicator clicks that the settings allow are drawn as dotted arrows.
func GenerateMermaid(form *domain.Form, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, p := range form.Panels {
		safeID := sanitizeMermaidID(p.ID)
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", safeID, nodeLabel(i, p))

		if i+1 < len(form.Panels) {
			next := sanitizeMermaidID(form.Panels[i+1].ID)
			if p.Check != nil {
				fmt.Fprintf(&sb, "    %s -- \"check\" --> %s\n", safeID, next)
			} else {
				fmt.Fprintf(&sb, "    %s --> %s\n", safeID, next)
			}
		}
	}

	if form.Settings.AllowClickBackward && len(form.Panels) > 2 {
		last := form.Panels[len(form.Panels)-1]
		first := form.Panels[0]
		fmt.Fprintf(&sb, "    %s -. \"click\" .-> %s\n", sanitizeMermaidID(last.ID), sanitizeMermaidID(first.ID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef completed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for i, state := range overlay.Indicators {
			if i >= len(form.Panels) || i == overlay.Current {
				continue
			}
			if state == domain.IndicatorCompleted {
				fmt.Fprintf(&sb, "    class %s completed;\n", sanitizeMermaidID(form.Panels[i].ID))
			}
		}
		if overlay.Current >= 0 && overlay.Current < len(form.Panels) {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(form.Panels[overlay.Current].ID))
		}
	}

	return sb.String()
}

func nodeLabel(i int, p domain.Panel) string {
	label := fmt.Sprintf("%d. %s", i+1, escape(p.Label()))
	var required []string
	for _, f := range p.Fields {
		if f.Required {
			required = append(required, escape(f.Name)+"*")
		}
	}
	for _, g := range p.Groups {
		required = append(required, fmt.Sprintf("%s (%d of %d)", escape(g.Name), g.Required(), len(g.Members)))
	}
	if len(required) > 0 {
		label += " <br/> " + strings.Join(required, ", ")
	}
	return label
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
