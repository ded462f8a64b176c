package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// DisableColor switches every style to plain text. Used when stdout is not
// a terminal.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// OutcomeIndicator renders a coordinator decision outcome.
func OutcomeIndicator(o contract.DecisionOutcome) string {
	switch o {
	case contract.OutcomeRescheduled:
		return StyleGreen.Render("● rescheduled")
	case contract.OutcomeSkipped:
		return StyleDim.Render("○ skipped")
	case contract.OutcomeFailed:
		return StyleRed.Render("✖ failed")
	default:
		return StyleDim.Render(string(o))
	}
}

// ReasonStyle returns the style used for a reschedule reason.
func ReasonStyle(r contract.RescheduleReason) lipgloss.Style {
	switch r {
	case contract.ReasonConflicts:
		return StyleRed
	case contract.ReasonUnscheduled:
		return StyleYellow
	case contract.ReasonDependencySatisfied:
		return StyleBlue
	case contract.ReasonForced:
		return StylePurple
	default:
		return StyleDim
	}
}

// ConflictBadge renders a conflict kind.
func ConflictBadge(k domain.ConflictKind) string {
	switch k {
	case domain.ConflictOverlap:
		return StyleYellow.Render("▲ OVERLAP")
	case domain.ConflictDependency:
		return StyleRed.Render("▲ DEPENDENCY")
	default:
		return StyleDim.Render(strings.ToUpper(string(k)))
	}
}

// StatusPill renders a step progress status.
func StatusPill(s domain.ProgressStatus) string {
	switch s {
	case domain.ProgressNotStarted:
		return StyleBlue.Render("○ Not started")
	case domain.ProgressInProgress:
		return StyleGreen.Render("● In progress")
	case domain.ProgressDone:
		return StyleDim.Render("✔ Done")
	case domain.ProgressBlocked:
		return StyleRed.Render("⊘ Blocked")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
