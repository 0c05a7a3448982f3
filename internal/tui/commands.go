package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"evodash/internal/api"
)

// Async work runs as tea.Cmd closures: each invokes one store operation
// and returns a settlement message. State lives in the stores; Update only
// reacts to the outcome.

func (a *App) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return sessionSettledMsg{err: a.stores.Session.Login(a.ctx, email, password)}
	}
}

func (a *App) registerCmd(email, password, name string) tea.Cmd {
	return func() tea.Msg {
		return sessionSettledMsg{err: a.stores.Session.Register(a.ctx, email, password, name)}
	}
}

func (a *App) verifyCmd() tea.Cmd {
	return func() tea.Msg {
		return verifySettledMsg{err: a.stores.Session.Verify(a.ctx)}
	}
}

func (a *App) fetchRunsCmd() tea.Cmd {
	return func() tea.Msg {
		return runsSettledMsg{err: a.stores.Runs.FetchRuns(a.ctx)}
	}
}

func (a *App) startRunCmd(config map[string]any) tea.Cmd {
	return func() tea.Msg {
		return runStartedMsg{err: a.stores.Runs.StartRun(a.ctx, config)}
	}
}

func (a *App) stopRunCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return runTransitionMsg{verb: "stop", id: id, err: a.stores.Runs.StopRun(a.ctx, id)}
	}
}

func (a *App) pauseRunCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return runTransitionMsg{verb: "pause", id: id, err: a.stores.Runs.PauseRun(a.ctx, id)}
	}
}

func (a *App) resumeRunCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return runTransitionMsg{verb: "resume", id: id, err: a.stores.Runs.ResumeRun(a.ctx, id)}
	}
}

func (a *App) fetchProgramsCmd(runID string) tea.Cmd {
	return func() tea.Msg {
		return programsSettledMsg{runID: runID, err: a.stores.Programs.FetchPrograms(a.ctx, runID)}
	}
}

func (a *App) programDetailsCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return programDetailsMsg{err: a.stores.Programs.FetchDetails(a.ctx, id)}
	}
}

func (a *App) loadConfigsCmd() tea.Cmd {
	return func() tea.Msg {
		presets, err := a.client.Configs(a.ctx)
		return configsLoadedMsg{presets: presets, err: err}
	}
}

func (a *App) saveConfigCmd(preset api.ConfigPreset) tea.Cmd {
	return func() tea.Msg {
		_, err := a.client.CreateConfig(a.ctx, preset)
		return configSavedMsg{err: err}
	}
}

func (a *App) deleteConfigCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return configDeletedMsg{id: id, err: a.client.DeleteConfig(a.ctx, id)}
	}
}
