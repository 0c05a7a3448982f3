package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"evodash/internal/api"
	"evodash/internal/store"
)

func (a *App) View() string {
	if !a.stores.Session.Snapshot().IsAuthenticated {
		return a.renderLogin()
	}

	var b strings.Builder
	b.WriteString(a.renderTabs())
	b.WriteString("\n\n")

	switch a.tab {
	case tabDashboard:
		b.WriteString(a.renderDashboard())
	case tabRuns:
		b.WriteString(a.renderRuns())
	case tabPrograms:
		b.WriteString(a.renderPrograms())
	case tabSettings:
		b.WriteString(a.renderSettings())
	}

	if a.promptMode != "" {
		b.WriteString("\n" + a.styles.selected.Render("> ") + a.promptInput.View())
	}

	if toasts := a.renderToasts(); toasts != "" {
		b.WriteString("\n" + toasts)
	}
	b.WriteString("\n" + a.renderFooter())
	return b.String()
}

func (a *App) renderTabs() string {
	parts := make([]string, 0, tabCount)
	for i, title := range tabTitles {
		if i == a.tab {
			parts = append(parts, a.styles.tabActive.Render(title))
		} else {
			parts = append(parts, a.styles.tabIdle.Render(title))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if snap := a.stores.Session.Snapshot(); snap.User != nil {
		header += "  " + a.styles.muted.Render(snap.User.Name)
	}
	return header
}

func (a *App) renderLogin() string {
	snap := a.stores.Session.Snapshot()
	var b strings.Builder

	title := "evodash — sign in"
	if a.registerMode {
		title = "evodash — register"
	}
	b.WriteString(a.styles.title.Render(title) + "\n\n")

	b.WriteString("  " + a.emailInput.View() + "\n")
	b.WriteString("  " + a.passwordInput.View() + "\n")
	if a.registerMode {
		b.WriteString("  " + a.nameInput.View() + "\n")
	}

	if snap.Loading {
		b.WriteString("\n  " + a.spin.View() + " signing in...\n")
	}
	if snap.Error != "" {
		b.WriteString("\n  " + a.styles.errText.Render(snap.Error) + "\n")
	}

	b.WriteString("\n" + a.styles.footer.Render("enter submit · tab next field · ctrl+r toggle register · ctrl+c quit"))
	return b.String()
}

func (a *App) renderDashboard() string {
	runs := a.stores.Runs
	snap := runs.Snapshot()
	counts := runs.StatusCounts()

	var b strings.Builder
	b.WriteString(a.styles.title.Render("Experiments") + "\n\n")

	if snap.Loading {
		b.WriteString(a.spin.View() + " fetching runs...\n\n")
	}
	if snap.Error != "" {
		b.WriteString(a.styles.errText.Render(snap.Error) + "\n\n")
	}

	rows := []struct {
		label string
		value string
	}{
		{"Total runs", fmt.Sprintf("%d", len(snap.Runs))},
		{"Running", fmt.Sprintf("%d", counts[api.RunRunning])},
		{"Paused", fmt.Sprintf("%d", counts[api.RunPaused])},
		{"Completed", fmt.Sprintf("%d", counts[api.RunCompleted])},
		{"Failed", fmt.Sprintf("%d", counts[api.RunFailed])},
		{"Best score", fmt.Sprintf("%.4f", runs.BestScore())},
		{"Total iterations", fmt.Sprintf("%d", runs.TotalIterations())},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			a.styles.label.Render(fmt.Sprintf("%-18s", r.label)),
			a.styles.value.Render(r.value)))
	}

	if snap.CurrentRun != nil {
		b.WriteString("\n" + a.styles.title.Render("Current run") + "\n")
		b.WriteString(a.renderRunCard(*snap.CurrentRun))
	}
	return a.styles.pane.Render(b.String())
}

func (a *App) renderRunCard(run api.EvolutionRun) string {
	p := paletteFor(a.stores.Theme.Current())
	status := lipgloss.NewStyle().Foreground(statusColor(p, string(run.Status))).Render(string(run.Status))
	progress := "-"
	if run.MaxIterations > 0 {
		progress = fmt.Sprintf("%d/%d", run.CurrentIteration, run.MaxIterations)
	}
	return fmt.Sprintf("  %s  %s  iter %s  best %.4f\n",
		a.styles.value.Render(run.Name), status, progress, run.BestScore)
}

func (a *App) renderRuns() string {
	snap := a.stores.Runs.Snapshot()
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Runs") + "\n\n")

	if snap.Loading {
		b.WriteString(a.spin.View() + " fetching...\n")
	}
	if snap.Error != "" {
		b.WriteString(a.styles.errText.Render(snap.Error) + "\n")
	}
	if len(snap.Runs) == 0 && !snap.Loading {
		b.WriteString(a.styles.muted.Render("No runs. Press n to start one, r to refresh.") + "\n")
	}

	p := paletteFor(a.stores.Theme.Current())
	for i, run := range snap.Runs {
		cursor := "  "
		style := a.styles.value
		if i == a.runCursor {
			cursor = a.styles.selected.Render("> ")
			style = a.styles.selected
		}
		status := lipgloss.NewStyle().Foreground(statusColor(p, string(run.Status))).Render(fmt.Sprintf("%-9s", run.Status))
		current := " "
		if snap.CurrentRun != nil && snap.CurrentRun.ID == run.ID {
			current = "*"
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s  %5d/%d  %.4f\n",
			cursor, current, status,
			style.Render(fmt.Sprintf("%-24s", truncate(run.Name, 24))),
			run.CurrentIteration, run.MaxIterations, run.BestScore))
	}
	return a.styles.pane.Render(b.String())
}

func (a *App) renderPrograms() string {
	snap := a.stores.Programs.Snapshot()
	view := a.stores.Programs.View()

	var b strings.Builder
	title := "Programs"
	if cur := a.stores.Runs.Snapshot().CurrentRun; cur != nil {
		title += " — " + cur.Name
	}
	b.WriteString(a.styles.title.Render(title) + "\n")
	b.WriteString(a.styles.muted.Render(a.describeDerivation(snap)) + "\n\n")

	if snap.Loading {
		b.WriteString(a.spin.View() + " fetching...\n")
	}
	if snap.Error != "" {
		b.WriteString(a.styles.errText.Render(snap.Error) + "\n")
	}
	if len(view) == 0 && !snap.Loading {
		b.WriteString(a.styles.muted.Render("No programs match. Enter a run from the Runs tab, or press F to clear filters.") + "\n")
	}

	for i, prog := range view {
		cursor := "  "
		style := a.styles.value
		if i == a.programCursor {
			cursor = a.styles.selected.Render("> ")
			style = a.styles.selected
		}
		score := "   -  "
		if s, ok := prog.CombinedScore(); ok {
			score = fmt.Sprintf("%.4f", s)
		}
		b.WriteString(fmt.Sprintf("%sgen %-3d isl %-2d  %s  %s  %s\n",
			cursor, prog.Generation, prog.Island, score,
			style.Render(fmt.Sprintf("%-10s", prog.Language)),
			a.styles.muted.Render(truncate(prog.ID, 12))))
	}

	left := a.styles.pane.Render(b.String())
	if a.showDetail && snap.Selected != nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, left, a.renderProgramDetail(*snap.Selected))
	}
	return left
}

func (a *App) describeDerivation(snap store.ProgramsSnapshot) string {
	parts := []string{fmt.Sprintf("sort %s %s", snap.SortBy, snap.SortOrder)}
	if snap.Filters.Generation != nil {
		parts = append(parts, fmt.Sprintf("gen=%d", *snap.Filters.Generation))
	}
	if snap.Filters.Island != nil {
		parts = append(parts, fmt.Sprintf("island=%d", *snap.Filters.Island))
	}
	if snap.Filters.MinScore != nil {
		parts = append(parts, fmt.Sprintf("min=%.2f", *snap.Filters.MinScore))
	}
	return strings.Join(parts, " · ")
}

func (a *App) renderProgramDetail(p api.Program) string {
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Program "+truncate(p.ID, 12)) + "\n\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", a.styles.label.Render("language  "), p.Language))
	b.WriteString(fmt.Sprintf("  %s %d\n", a.styles.label.Render("generation"), p.Generation))
	b.WriteString(fmt.Sprintf("  %s %d\n", a.styles.label.Render("island    "), p.Island))
	b.WriteString(fmt.Sprintf("  %s %d\n", a.styles.label.Render("iteration "), p.IterationFound))
	if p.ParentID != "" {
		b.WriteString(fmt.Sprintf("  %s %s\n", a.styles.label.Render("parent    "), truncate(p.ParentID, 12)))
	}
	b.WriteString(fmt.Sprintf("  %s %.3f / %.3f\n", a.styles.label.Render("cx / div  "), p.Complexity, p.Diversity))

	if len(p.Metrics) > 0 {
		b.WriteString("\n" + a.styles.label.Render("  metrics") + "\n")
		names := make([]string, 0, len(p.Metrics))
		for name := range p.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("    %-18s %.4f\n", name, p.Metrics[name]))
		}
	}
	if len(p.Metadata) > 0 {
		b.WriteString("\n" + a.styles.label.Render("  metadata") + "\n")
		keys := make([]string, 0, len(p.Metadata))
		for k := range p.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("    %-18s %s\n", k, api.FormatMetadataValue(p.Metadata[k])))
		}
	}
	if p.Code != "" {
		b.WriteString("\n" + a.styles.label.Render("  code") + "\n")
		lines := strings.Split(p.Code, "\n")
		if len(lines) > 12 {
			lines = append(lines[:12], "...")
		}
		for _, line := range lines {
			b.WriteString("    " + a.styles.muted.Render(truncate(line, 60)) + "\n")
		}
	}
	return a.styles.pane.Render(b.String())
}

func (a *App) renderSettings() string {
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Settings") + "\n\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", a.styles.label.Render("theme     "), a.stores.Theme.Current()))
	b.WriteString(fmt.Sprintf("  %s %s\n\n", a.styles.label.Render("server    "), a.cfg.Server.BaseURL))

	b.WriteString(a.styles.title.Render("Run config presets") + "\n")
	if len(a.presets) == 0 {
		b.WriteString(a.styles.muted.Render("  none — press n to create, r to reload") + "\n")
	}
	for i, preset := range a.presets {
		cursor := "  "
		style := a.styles.value
		if i == a.presetCursor {
			cursor = a.styles.selected.Render("> ")
			style = a.styles.selected
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor,
			style.Render(fmt.Sprintf("%-24s", truncate(preset.Name, 24))),
			a.styles.muted.Render(fmt.Sprintf("%d params", len(preset.Params)))))
	}
	return a.styles.pane.Render(b.String())
}

func (a *App) renderToasts() string {
	toasts := a.stores.Toasts.Snapshot()
	if len(toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style, ok := a.styles.toast[t.Severity]
		if !ok {
			style = a.styles.toast[store.SeverityInfo]
		}
		lines = append(lines, style.Render(t.Message))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderFooter() string {
	var hints string
	switch a.tab {
	case tabDashboard:
		hints = "r refresh · tab switch · L logout · q quit"
	case tabRuns:
		hints = "enter open · n new · s stop · p pause · u resume · r refresh · q quit"
	case tabPrograms:
		hints = "enter detail · f filter · F clear · o sort · O order · r refresh · q quit"
	case tabSettings:
		hints = "t theme · n new preset · enter start from preset · d delete · q quit"
	}
	return a.styles.footer.Render(hints)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
