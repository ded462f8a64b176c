package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/scheduler"
)

// FormatRescheduleStats renders the result of an auto-reschedule run.
// Warnings are not included; callers print them to stderr.
func FormatRescheduleStats(stats *contract.RescheduleStats, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(Header("Auto-Reschedule Results"))
	b.WriteString("\n")
	b.WriteString(RenderKeyValues([][2]string{
		{"Window", FormatWindow(stats.WindowStart, stats.WindowEnd, loc)},
		{"Analyzed", Plural(stats.AnalyzedAssignments, "assignment")},
		{"Rescheduled", fmt.Sprintf("%s, %s", Plural(stats.RescheduledAssignments, "assignment"), Plural(stats.RescheduledSteps, "step"))},
		{"Total steps", fmt.Sprintf("%d", stats.TotalSteps)},
		{"Conflicts", conflictDelta(stats.ConflictsBefore, stats.ConflictsAfter)},
		{"Failed", failedCount(stats.FailedReschedules)},
	}))
	b.WriteString("\n")

	acted := make([]contract.Decision, 0, len(stats.Decisions))
	skipped := 0
	for _, d := range stats.Decisions {
		if d.Outcome == contract.OutcomeSkipped {
			skipped++
			continue
		}
		acted = append(acted, d)
	}

	if len(acted) == 0 {
		b.WriteString(Dim("  No changes needed."))
		b.WriteString("\n")
		writeSkipped(&b, skipped)
		return b.String()
	}

	headers := []string{"Assignment", "User", "Reason", "Outcome", "Changed"}
	rows := make([][]string, 0, len(acted))
	for _, d := range acted {
		rows = append(rows, []string{
			TruncID(d.AssignmentID),
			TruncID(d.UserID),
			ReasonStyle(d.Reason).Render(string(d.Reason)),
			OutcomeIndicator(d.Outcome),
			fmt.Sprintf("%d", d.ChangedSteps),
		})
	}
	b.WriteString(RenderTable(headers, rows))

	writeSkipped(&b, skipped)

	for _, d := range acted {
		if d.Outcome == contract.OutcomeFailed && d.Error != "" {
			b.WriteString(fmt.Sprintf("  %s %s\n", StyleRed.Render(d.AssignmentID+":"), d.Error))
		}
	}
	return b.String()
}

func writeSkipped(b *strings.Builder, skipped int) {
	if skipped > 0 {
		b.WriteString(Dim(fmt.Sprintf("  %s up to date.", Plural(skipped, "assignment"))))
		b.WriteString("\n")
	}
}

// FormatPlanResult renders the windows of one planned assignment.
func FormatPlanResult(res *contract.PlanResult, loc *time.Location, now time.Time) string {
	var b strings.Builder

	b.WriteString(Header("Plan"))
	b.WriteString("\n")
	b.WriteString(RenderKeyValues([][2]string{
		{"Assignment", res.AssignmentID},
		{"User", res.UserID},
		{"Changed", Plural(res.ChangedSteps, "step")},
	}))
	b.WriteString("\n")

	headers := []string{"Step", "Status", "Window", "Starts"}
	rows := make([][]string, 0, len(res.Steps))
	for _, p := range res.Steps {
		title := res.StepTitles[p.StepID]
		if title == "" {
			title = p.StepID
		}
		window := Dim("--")
		starts := Dim("--")
		if p.PlannedDateStart != nil && p.PlannedDateEnd != nil {
			window = FormatWindow(*p.PlannedDateStart, *p.PlannedDateEnd, loc)
			starts = RelativeDateFrom(*p.PlannedDateStart, now)
		}
		if p.Status == domain.ProgressDone && p.ActualCompletedAt != nil {
			starts = Dim("done " + RelativeDateFrom(*p.ActualCompletedAt, now))
		}
		rows = append(rows, []string{title, StatusPill(p.Status), window, starts})
	}
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

// FormatConflicts renders a conflict list grouped by kind counts.
func FormatConflicts(conflicts []domain.Conflict, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(Header("Conflicts"))
	b.WriteString("\n")
	if len(conflicts) == 0 {
		b.WriteString(StyleGreen.Render("  No conflicts."))
		b.WriteString("\n")
		return b.String()
	}

	counts := scheduler.CountByKind(conflicts)
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", counts[domain.ConflictKind(k)], k))
	}
	b.WriteString("  " + strings.Join(parts, ", ") + "\n\n")

	headers := []string{"Kind", "User", "First", "Second"}
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{
			ConflictBadge(c.Kind),
			TruncID(c.UserID),
			describeWindow(c.First, loc),
			describeWindow(c.Second, loc),
		})
	}
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

// FormatLoadResult renders the row counts of an imported fixture.
func FormatLoadResult(res *contract.LoadResult) string {
	content := RenderKeyValues([][2]string{
		{"Users", fmt.Sprintf("%d", res.Users)},
		{"Programs", fmt.Sprintf("%d", res.Programs)},
		{"Steps", fmt.Sprintf("%d", res.Steps)},
		{"Constraints", fmt.Sprintf("%d", res.Constraints)},
		{"Assignments", fmt.Sprintf("%d", res.Assignments)},
	})
	return RenderBox("Fixture loaded", strings.TrimRight(content, "\n"))
}

func describeWindow(w domain.PlannedWindow, loc *time.Location) string {
	return fmt.Sprintf("%s %s", TruncID(w.StepID), FormatWindow(w.Start, w.End, loc))
}

func conflictDelta(before, after int) string {
	text := fmt.Sprintf("%d → %d", before, after)
	switch {
	case after == 0:
		return StyleGreen.Render(text)
	case after < before:
		return StyleYellow.Render(text)
	default:
		return StyleRed.Render(text)
	}
}

func failedCount(n int) string {
	if n == 0 {
		return Dim("0")
	}
	return StyleRed.Render(fmt.Sprintf("%d", n))
}
