package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Terminal prints notices as one styled line each.
type Terminal struct {
	w io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Notify(n Notice) {
	style := titleStyle
	if n.Variant == VariantDestructive {
		style = errorTitleStyle
	}
	fmt.Fprintf(t.w, "%s %s\n", style.Render(n.Title+":"), descriptionStyle.Render(n.Description))
}
