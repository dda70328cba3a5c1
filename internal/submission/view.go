package submission

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorDestructive = lipgloss.Color("#e53935")
	colorSuccess     = lipgloss.Color("#8BC34A")
	colorMuted       = lipgloss.Color("#8a94a6")
)

// TerminalView renders controller output as styled lines on a writer.
type TerminalView struct {
	out io.Writer

	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
	mutedStyle   lipgloss.Style
}

func NewTerminalView(out io.Writer) *TerminalView {
	return &TerminalView{
		out:          out,
		errorStyle:   lipgloss.NewStyle().Foreground(colorDestructive).Bold(true),
		successStyle: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		mutedStyle:   lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

func (v *TerminalView) SetFieldError(f Field, on bool) {
	if !on {
		return
	}
	fmt.Fprintln(v.out, v.errorStyle.Render("✗ "+string(f)))
}

func (v *TerminalView) ShowStatus(s Status) {
	switch s.Kind {
	case StatusSuccess:
		fmt.Fprintln(v.out, v.successStyle.Render("✓ "+s.Text))
	case StatusError:
		fmt.Fprintln(v.out, v.errorStyle.Render("✗ "+s.Text))
	}
}

func (v *TerminalView) ClearStatus() {}

func (v *TerminalView) SetBusy(busy bool) {
	if busy {
		fmt.Fprintln(v.out, v.mutedStyle.Render("Sending..."))
	}
}

func (v *TerminalView) ResetFields() {}
