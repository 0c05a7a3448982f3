// Package tui is the presentation layer: deterministic glue that reads
// store snapshots and routes user actions to store operations. It owns no
// domain state of its own.
package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"evodash/internal/api"
	"evodash/internal/config"
	"evodash/internal/store"
)

// Tab indices
const (
	tabDashboard = 0
	tabRuns      = 1
	tabPrograms  = 2
	tabSettings  = 3
	tabCount     = 4
)

var tabTitles = [tabCount]string{"Dashboard", "Runs", "Programs", "Settings"}

// Stores bundles the state layer the TUI composes over.
type Stores struct {
	Session  *store.SessionStore
	Runs     *store.RunStore
	Programs *store.ProgramCatalog
	Toasts   *store.NotificationQueue
	Theme    *store.ThemeStore
}

// App is the Bubble Tea model.
type App struct {
	ctx    context.Context
	cfg    config.Config
	client *api.Client
	stores Stores
	log    *zap.Logger

	keys   keyMap
	styles styles
	width  int
	height int

	hasStoredToken bool
	tab            int
	runCursor      int
	programCursor  int
	presetCursor   int
	presets        []api.ConfigPreset
	showDetail     bool
	spin           spinner.Model

	// login form
	emailInput    textinput.Model
	passwordInput textinput.Model
	nameInput     textinput.Model
	registerMode  bool
	loginFocus    int

	// one-line prompts (filter expression, new run or preset name)
	promptMode  string // "", "filter", "newrun", "newpreset"
	promptInput textinput.Model
}

// New builds the app. hasStoredToken triggers the one startup verification.
func New(ctx context.Context, cfg config.Config, client *api.Client, stores Stores, hasStoredToken bool, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}

	email := textinput.New()
	email.Placeholder = "email"
	email.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	name := textinput.New()
	name.Placeholder = "display name"
	prompt := textinput.New()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ctx:            ctx,
		cfg:            cfg,
		client:         client,
		stores:         stores,
		log:            log,
		keys:           defaultKeyMap(),
		styles:         newStyles(paletteFor(stores.Theme.Current())),
		hasStoredToken: hasStoredToken,
		spin:           sp,
		emailInput:     email,
		passwordInput:  password,
		nameInput:      name,
		promptInput:    prompt,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spin.Tick}
	if a.hasStoredToken {
		cmds = append(cmds, a.verifyCmd())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case ToastsChangedMsg:
		return a, nil

	case SessionExpiredMsg:
		a.stores.Toasts.Warning("Session expired, please log in again")
		return a, nil

	case verifySettledMsg:
		if msg.err != nil {
			// stored token no longer valid; login view takes over
			return a, nil
		}
		return a, tea.Batch(a.fetchRunsCmd(), a.loadConfigsCmd())

	case sessionSettledMsg:
		if msg.err != nil {
			// login view renders the store error
			return a, nil
		}
		if snap := a.stores.Session.Snapshot(); snap.User != nil {
			a.stores.Toasts.Success("Welcome, " + snap.User.Name)
		}
		return a, tea.Batch(a.fetchRunsCmd(), a.loadConfigsCmd())

	case runsSettledMsg:
		a.clampCursors()
		return a, nil

	case runStartedMsg:
		if msg.err != nil {
			a.stores.Toasts.Error(api.Message(msg.err, "Failed to start evolution"))
			return a, nil
		}
		a.stores.Toasts.Success("Run started")
		if cur := a.stores.Runs.Snapshot().CurrentRun; cur != nil {
			return a, a.fetchProgramsCmd(cur.ID)
		}
		return a, nil

	case runTransitionMsg:
		if msg.err != nil {
			a.stores.Toasts.Error(api.Message(msg.err, "Failed to "+msg.verb+" run"))
			return a, nil
		}
		a.stores.Toasts.Info("Run " + pastTense(msg.verb))
		return a, nil

	case programsSettledMsg:
		a.clampCursors()
		return a, nil

	case programDetailsMsg:
		if msg.err != nil {
			a.stores.Toasts.Error(api.Message(msg.err, "Failed to fetch program details"))
			a.showDetail = false
		}
		return a, nil

	case configsLoadedMsg:
		if msg.err != nil {
			a.stores.Toasts.Error(api.Message(msg.err, "Failed to load config presets"))
			return a, nil
		}
		a.presets = msg.presets
		a.clampCursors()
		return a, nil

	case configSavedMsg:
		if msg.err != nil {
			a.stores.Toasts.Error(api.Message(msg.err, "Failed to save preset"))
			return a, nil
		}
		a.stores.Toasts.Success("Preset saved")
		return a, a.loadConfigsCmd()

	case configDeletedMsg:
		if msg.err != nil {
			a.stores.Toasts.Error(api.Message(msg.err, "Failed to delete preset"))
			return a, nil
		}
		a.stores.Toasts.Success("Preset deleted")
		return a, a.loadConfigsCmd()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.stores.Toasts.Shutdown()
		return a, tea.Quit
	}

	if !a.stores.Session.Snapshot().IsAuthenticated {
		return a.handleLoginKey(msg)
	}
	if a.promptMode != "" {
		return a.handlePromptKey(msg)
	}
	if key.Matches(msg, a.keys.Quit) {
		a.stores.Toasts.Shutdown()
		return a, tea.Quit
	}

	switch {
	case key.Matches(msg, a.keys.NextTab):
		a.tab = (a.tab + 1) % tabCount
		a.showDetail = false
		return a, nil
	case key.Matches(msg, a.keys.PrevTab):
		a.tab = (a.tab + tabCount - 1) % tabCount
		a.showDetail = false
		return a, nil
	case key.Matches(msg, a.keys.Dismiss):
		if toasts := a.stores.Toasts.Snapshot(); len(toasts) > 0 {
			a.stores.Toasts.Dismiss(toasts[0].ID)
		}
		return a, nil
	case key.Matches(msg, a.keys.Logout):
		a.stores.Session.Logout()
		a.stores.Toasts.Info("Logged out")
		return a, nil
	}

	switch a.tab {
	case tabDashboard:
		return a.handleDashboardKey(msg)
	case tabRuns:
		return a.handleRunsKey(msg)
	case tabPrograms:
		return a.handleProgramsKey(msg)
	case tabSettings:
		return a.handleSettingsKey(msg)
	}
	return a, nil
}

func (a *App) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Refresh) {
		return a, a.fetchRunsCmd()
	}
	return a, nil
}

func (a *App) handleRunsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := a.stores.Runs.Snapshot()
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.runCursor > 0 {
			a.runCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.runCursor < len(snap.Runs)-1 {
			a.runCursor++
		}
	case key.Matches(msg, a.keys.Refresh):
		return a, a.fetchRunsCmd()
	case key.Matches(msg, a.keys.NewRun):
		a.openPrompt("newrun", "run name")
	case key.Matches(msg, a.keys.Enter):
		if run, ok := a.cursorRun(snap); ok {
			a.stores.Runs.SetCurrentRun(run)
			a.tab = tabPrograms
			return a, a.fetchProgramsCmd(run.ID)
		}
	case key.Matches(msg, a.keys.Stop):
		if run, ok := a.cursorRun(snap); ok {
			return a, a.stopRunCmd(run.ID)
		}
	case key.Matches(msg, a.keys.Pause):
		if run, ok := a.cursorRun(snap); ok {
			return a, a.pauseRunCmd(run.ID)
		}
	case key.Matches(msg, a.keys.Resume):
		if run, ok := a.cursorRun(snap); ok {
			return a, a.resumeRunCmd(run.ID)
		}
	}
	return a, nil
}

func (a *App) handleProgramsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := a.stores.Programs.View()
	switch {
	case key.Matches(msg, a.keys.Back):
		if a.showDetail {
			a.showDetail = false
			a.stores.Programs.SelectProgram(nil)
		}
	case key.Matches(msg, a.keys.Up):
		if a.programCursor > 0 {
			a.programCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.programCursor < len(view)-1 {
			a.programCursor++
		}
	case key.Matches(msg, a.keys.Refresh):
		if cur := a.stores.Runs.Snapshot().CurrentRun; cur != nil {
			return a, a.fetchProgramsCmd(cur.ID)
		}
		a.stores.Toasts.Warning("Select a run first")
	case key.Matches(msg, a.keys.Enter):
		if a.programCursor < len(view) {
			p := view[a.programCursor]
			a.stores.Programs.SelectProgram(&p)
			a.showDetail = true
			return a, a.programDetailsCmd(p.ID)
		}
	case key.Matches(msg, a.keys.Filter):
		a.openPrompt("filter", "gen=2 island=1 min=0.8")
	case key.Matches(msg, a.keys.ClearFlt):
		a.stores.Programs.ClearFilters()
		a.programCursor = 0
	case key.Matches(msg, a.keys.Sort):
		a.cycleSortKey()
	case key.Matches(msg, a.keys.Order):
		a.toggleSortOrder()
	}
	return a, nil
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Theme):
		theme := a.stores.Theme.Toggle()
		a.styles = newStyles(paletteFor(theme))
		a.cfg.UI.Theme = string(theme)
		if err := config.Save(a.cfg); err != nil {
			a.log.Warn("persist theme failed", zap.Error(err))
		}
	case key.Matches(msg, a.keys.Refresh):
		return a, a.loadConfigsCmd()
	case key.Matches(msg, a.keys.NewRun):
		a.openPrompt("newpreset", "preset name")
	case key.Matches(msg, a.keys.Up):
		if a.presetCursor > 0 {
			a.presetCursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.presetCursor < len(a.presets)-1 {
			a.presetCursor++
		}
	case key.Matches(msg, a.keys.Enter):
		if a.presetCursor < len(a.presets) {
			preset := a.presets[a.presetCursor]
			return a, a.startRunCmd(preset.Params)
		}
	case msg.String() == "d":
		if a.presetCursor < len(a.presets) {
			return a, a.deleteConfigCmd(a.presets[a.presetCursor].ID)
		}
	}
	return a, nil
}

// ---------------------------------------------------------------------------
// Login form
// ---------------------------------------------------------------------------

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "enter":
		if msg.String() == "enter" && a.loginFocus == a.lastLoginField() {
			return a.submitLogin()
		}
		a.loginFocus = (a.loginFocus + 1) % (a.lastLoginField() + 1)
		a.refocusLogin()
		return a, nil
	case "ctrl+r":
		a.registerMode = !a.registerMode
		a.loginFocus = 0
		a.refocusLogin()
		a.stores.Session.ClearError()
		return a, nil
	case "esc":
		a.stores.Session.ClearError()
		return a, nil
	}

	var cmd tea.Cmd
	switch a.loginFocus {
	case 0:
		a.emailInput, cmd = a.emailInput.Update(msg)
	case 1:
		a.passwordInput, cmd = a.passwordInput.Update(msg)
	case 2:
		a.nameInput, cmd = a.nameInput.Update(msg)
	}
	return a, cmd
}

func (a *App) lastLoginField() int {
	if a.registerMode {
		return 2
	}
	return 1
}

func (a *App) refocusLogin() {
	a.emailInput.Blur()
	a.passwordInput.Blur()
	a.nameInput.Blur()
	switch a.loginFocus {
	case 0:
		a.emailInput.Focus()
	case 1:
		a.passwordInput.Focus()
	case 2:
		a.nameInput.Focus()
	}
}

func (a *App) submitLogin() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(a.emailInput.Value())
	password := a.passwordInput.Value()
	if email == "" || password == "" {
		// boundary validation stays in the presentation layer
		a.stores.Toasts.Warning("Email and password are required")
		return a, nil
	}
	if a.registerMode {
		name := strings.TrimSpace(a.nameInput.Value())
		if name == "" {
			a.stores.Toasts.Warning("Display name is required")
			return a, nil
		}
		return a, a.registerCmd(email, password, name)
	}
	return a, a.loginCmd(email, password)
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

func (a *App) openPrompt(mode, placeholder string) {
	a.promptMode = mode
	a.promptInput.SetValue("")
	a.promptInput.Placeholder = placeholder
	a.promptInput.Focus()
}

func (a *App) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.promptMode = ""
		a.promptInput.Blur()
		return a, nil
	case "enter":
		mode, value := a.promptMode, strings.TrimSpace(a.promptInput.Value())
		a.promptMode = ""
		a.promptInput.Blur()
		switch mode {
		case "filter":
			a.applyFilterExpression(value)
			a.programCursor = 0
		case "newrun":
			if value == "" {
				return a, nil
			}
			return a, a.startRunCmd(map[string]any{"name": value})
		case "newpreset":
			if value == "" {
				return a, nil
			}
			return a, a.saveConfigCmd(api.ConfigPreset{Name: value, Params: map[string]any{"name": value}})
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.promptInput, cmd = a.promptInput.Update(msg)
	return a, cmd
}

// applyFilterExpression parses "gen=N island=N min=F" into a filter patch.
// Unknown terms are reported, not silently eaten.
func (a *App) applyFilterExpression(expr string) {
	if expr == "" {
		return
	}
	var patch store.Filters
	for _, term := range strings.Fields(expr) {
		k, v, ok := strings.Cut(term, "=")
		if !ok {
			a.stores.Toasts.Warning("Bad filter term: " + term)
			return
		}
		switch k {
		case "gen", "generation":
			n, err := strconv.Atoi(v)
			if err != nil {
				a.stores.Toasts.Warning("Bad generation: " + v)
				return
			}
			patch.Generation = &n
		case "island":
			n, err := strconv.Atoi(v)
			if err != nil {
				a.stores.Toasts.Warning("Bad island: " + v)
				return
			}
			patch.Island = &n
		case "min", "minscore":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				a.stores.Toasts.Warning("Bad min score: " + v)
				return
			}
			patch.MinScore = &f
		default:
			a.stores.Toasts.Warning("Unknown filter field: " + k)
			return
		}
	}
	a.stores.Programs.SetFilters(patch)
}

func (a *App) cycleSortKey() {
	snap := a.stores.Programs.Snapshot()
	var next store.SortKey
	switch snap.SortBy {
	case store.SortGeneration:
		next = store.SortScore
	case store.SortScore:
		next = store.SortTimestamp
	default:
		next = store.SortGeneration
	}
	a.stores.Programs.SetSorting(next, snap.SortOrder)
}

func (a *App) toggleSortOrder() {
	snap := a.stores.Programs.Snapshot()
	order := store.SortDesc
	if snap.SortOrder == store.SortDesc {
		order = store.SortAsc
	}
	a.stores.Programs.SetSorting(snap.SortBy, order)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (a *App) cursorRun(snap store.RunsSnapshot) (api.EvolutionRun, bool) {
	if a.runCursor < 0 || a.runCursor >= len(snap.Runs) {
		return api.EvolutionRun{}, false
	}
	return snap.Runs[a.runCursor], true
}

func (a *App) clampCursors() {
	if n := len(a.stores.Runs.Snapshot().Runs); a.runCursor >= n {
		a.runCursor = max(0, n-1)
	}
	if n := len(a.stores.Programs.View()); a.programCursor >= n {
		a.programCursor = max(0, n-1)
	}
	if n := len(a.presets); a.presetCursor >= n {
		a.presetCursor = max(0, n-1)
	}
}

func pastTense(verb string) string {
	switch verb {
	case "stop":
		return "stopped"
	case "pause":
		return "paused"
	case "resume":
		return "resumed"
	default:
		return verb
	}
}
