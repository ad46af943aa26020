package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/ashfall-game/ashfall/internal/engine"
	"github.com/ashfall-game/ashfall/internal/save"
	"github.com/ashfall-game/ashfall/internal/session"
	"github.com/ashfall-game/ashfall/internal/store"
	"github.com/ashfall-game/ashfall/internal/util"
)

const (
	viewLogin     = "login"
	viewMenu      = "menu"
	viewCreate    = "create"
	viewAdventure = "adventure"
	viewSheet     = "sheet"
	viewQuests    = "quests"
	viewSettings  = "settings"
	viewHelp      = "help"
)

// apTickInterval is the recovery re-derivation cadence. No finer than the
// smallest meaningful recovery step.
const apTickInterval = 30 * time.Second

var genders = []string{"female", "male", "other"}

type model struct {
	ctx   context.Context
	cfg   util.Config
	users *store.UserRepo

	sess session.Session
	pipe *engine.Pipeline
	// snap is the render copy of the game state, refreshed on the Update
	// goroutine. Views read it instead of the live state so an in-flight
	// turn never races a render.
	snap *engine.GameState

	narrator engine.Narrator
	status   engine.StatusExtractor
	imager   engine.Imager

	view      string
	themeName string
	styles    styles

	userInput textinput.Model
	passInput textinput.Model
	nameInput textinput.Model
	actInput  textinput.Model
	loginField int
	genderIdx  int

	vp    viewport.Model
	spin  spinner.Model
	busy  bool
	ready bool

	notice string
	errMsg string

	width, height int
}

type turnMsg struct {
	res *engine.TurnResult
	err error
}

type avatarMsg struct {
	url     string
	errText string
}

type apTickMsg time.Time

func initialModel(ctx context.Context, users *store.UserRepo, narrator engine.Narrator, status engine.StatusExtractor, imager engine.Imager, cfg util.Config) model {
	m := model{
		ctx:       ctx,
		cfg:       cfg,
		users:     users,
		narrator:  narrator,
		status:    status,
		imager:    imager,
		view:      viewLogin,
		themeName: "terminal_green",
	}
	m.styles = newStyles(paletteFor(m.themeName))

	m.userInput = textinput.New()
	m.userInput.Placeholder = "username"
	m.userInput.Focus()
	m.passInput = textinput.New()
	m.passInput.Placeholder = "password"
	m.passInput.EchoMode = textinput.EchoPassword
	m.nameInput = textinput.New()
	m.nameInput.Placeholder = "character name"
	m.actInput = textinput.New()
	m.actInput.Placeholder = "What do you do?"
	m.actInput.CharLimit = 500

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.vp = viewport.New(80, 20)
	return m
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func apTick() tea.Cmd {
	return tea.Tick(apTickInterval, func(t time.Time) tea.Msg { return apTickMsg(t) })
}

// persistState is the pipeline commit hook: snapshot plus registry row.
// Guests stay in memory only.
func (m *model) persistState(st *engine.GameState) error {
	if m.sess.Temporary {
		return nil
	}
	if err := save.Write(m.sess.Username, st); err != nil {
		return err
	}
	return m.sess.Persist(m.ctx, m.users, st)
}

func (m *model) startPipeline(st *engine.GameState) {
	m.pipe = engine.NewPipeline(st, m.sess.Tier, m.narrator, m.status,
		engine.WithImager(m.imager),
		engine.WithPersist(m.persistState),
	)
	m.refreshSnapshot()
}

func (m *model) refreshSnapshot() {
	if m.pipe != nil {
		m.snap = m.pipe.Snapshot()
	}
}

// bindSession routes a fresh session to the right view: straight into the
// adventure when a snapshot resumes, character creation otherwise.
func (m *model) bindSession(s session.Session) tea.Cmd {
	m.sess = s
	m.errMsg = ""
	if st, notice := save.Load(s.Username, s.Tier, time.Now()); st != nil && st.Player != nil {
		m.notice = notice
		m.startPipeline(st)
		m.view = viewAdventure
		m.refreshStory()
		m.actInput.Focus()
		return tea.Batch(apTick(), textinput.Blink)
	} else if notice != "" {
		m.notice = notice
	}
	m.view = viewCreate
	m.nameInput.Focus()
	return textinput.Blink
}

func (m *model) createCharacter() tea.Cmd {
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		m.errMsg = "A wanderer needs a name."
		return nil
	}
	player := engine.NewPlayer(name, genders[m.genderIdx], 25)
	st := engine.NewGameState(player, m.sess.Tier, m.sess.AP, m.sess.APUpdatedAt, m.sess.Settings)
	st.Language = m.cfg.Language
	st.AppendEntry(engine.HistoryEntry{
		Role: engine.RoleNarrator,
		Text: fmt.Sprintf("War never changes. The year is %d. %s steps out of the vault shadow near %s.", st.CurrentYear, name, st.Location),
	})
	m.startPipeline(st)
	m.view = viewAdventure
	m.refreshStory()
	m.actInput.Focus()
	return tea.Batch(apTick(), m.generateAvatar(player.Name, player.Gender), textinput.Blink)
}

// generateAvatar is a non-fatal nicety; failures surface inline only. The
// prompt is captured here so the command goroutine holds no actor reference.
func (m *model) generateAvatar(name, gender string) tea.Cmd {
	if m.imager == nil {
		return nil
	}
	prompt := fmt.Sprintf("portrait of %s, a %s wasteland wanderer", name, gender)
	tier := m.sess.Tier
	return func() tea.Msg {
		res := m.imager.GenerateImage(m.ctx, prompt, engine.ImageOptions{Tier: tier})
		if res.Err != "" {
			return avatarMsg{errText: res.Err}
		}
		return avatarMsg{url: res.URL}
	}
}

// turnTimeout bounds one full collaborator round trip so a dead link can
// never leave the session busy forever.
const turnTimeout = 2 * time.Minute

func (m *model) submitAction() tea.Cmd {
	input := m.actInput.Value()
	pipe := m.pipe
	parent := m.ctx
	m.busy = true
	m.actInput.SetValue("")
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, turnTimeout)
		defer cancel()
		res, err := pipe.Submit(ctx, input)
		return turnMsg{res: res, err: err}
	})
}

func (m *model) refreshStory() {
	if m.snap == nil {
		return
	}
	var b strings.Builder
	for _, e := range m.snap.History {
		switch e.Role {
		case engine.RolePlayer:
			b.WriteString("> **" + e.Text + "**\n\n")
		default:
			b.WriteString(e.Text + "\n\n")
			if e.Image != "" {
				b.WriteString("*[scene image attached]*\n\n")
			}
			for _, s := range e.Sources {
				b.WriteString(fmt.Sprintf("  - source: %s\n", s.URL))
			}
		}
	}
	width := m.vp.Width
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width-2))
	if err != nil {
		m.vp.SetContent(b.String())
	} else {
		out, rerr := renderer.Render(b.String())
		if rerr != nil {
			out = b.String()
		}
		m.vp.SetContent(out)
	}
	m.vp.GotoBottom()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height - 7
		if m.vp.Height < 5 {
			m.vp.Height = 5
		}
		m.ready = true
		m.refreshStory()
		return m, nil

	case apTickMsg:
		// The tick interleaves with in-flight turns; recovery sync is
		// monotonic toward the ceiling so ordering does not matter.
		if m.pipe != nil {
			m.pipe.SyncAP()
			m.refreshSnapshot()
			return m, apTick()
		}
		return m, nil

	case turnMsg:
		m.busy = false
		if msg.err != nil {
			if engine.IsInputRejection(msg.err) {
				m.errMsg = msg.err.Error()
			} else {
				// Mid-turn failures already wrote a history entry.
				m.errMsg = ""
			}
		} else {
			m.errMsg = ""
		}
		m.refreshSnapshot()
		m.refreshStory()
		return m, nil

	case avatarMsg:
		if msg.errText != "" {
			m.notice = "Avatar generation failed: " + msg.errText
		} else if m.pipe != nil {
			// Persist right away so the avatar survives an immediate quit.
			m.pipe.Apply(func(st *engine.GameState) {
				if st.Player != nil {
					st.Player.AvatarURL = msg.url
				}
			})
			m.refreshSnapshot()
			m.notice = "Avatar ready."
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.view {
	case viewLogin:
		return m.updateLogin(msg)
	case viewCreate:
		return m.updateCreate(msg)
	case viewAdventure:
		return m.updateAdventure(msg)
	case viewMenu:
		switch k {
		case "1":
			if m.pipe != nil {
				m.view = viewAdventure
				m.actInput.Focus()
				return m, textinput.Blink
			}
		case "2":
			if !m.sess.Temporary {
				_ = save.Delete(m.sess.Username)
			}
			m.pipe = nil
			m.view = viewCreate
			m.nameInput.Focus()
			return m, textinput.Blink
		case "3":
			m.view = viewSettings
		case "4":
			m.view = viewHelp
		case "5", "q":
			return m, tea.Quit
		}
		return m, nil
	case viewSheet, viewQuests, viewHelp:
		if k == "esc" || k == "q" {
			m.view = viewAdventure
			m.actInput.Focus()
			return m, textinput.Blink
		}
		return m, nil
	case viewSettings:
		return m.updateSettings(k)
	}
	return m, nil
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.loginField = 1 - m.loginField
		if m.loginField == 0 {
			m.userInput.Focus()
			m.passInput.Blur()
		} else {
			m.passInput.Focus()
			m.userInput.Blur()
		}
		return m, textinput.Blink
	case "enter":
		s, err := session.Login(m.ctx, m.users, m.userInput.Value(), m.passInput.Value(), time.Now())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		cmd := m.bindSession(s)
		return m, cmd
	case "ctrl+r":
		s, err := session.Register(m.ctx, m.users, m.userInput.Value(), m.passInput.Value(), time.Now())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		cmd := m.bindSession(s)
		return m, cmd
	case "ctrl+g":
		cmd := m.bindSession(session.Guest(time.Now()))
		return m, cmd
	}
	var cmd tea.Cmd
	if m.loginField == 0 {
		m.userInput, cmd = m.userInput.Update(msg)
	} else {
		m.passInput, cmd = m.passInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := m.createCharacter()
		return m, cmd
	case "ctrl+g":
		m.genderIdx = (m.genderIdx + 1) % len(genders)
		return m, nil
	case "esc":
		m.view = viewLogin
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m model) updateAdventure(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.busy {
			m.errMsg = "The narrator is still thinking."
			return m, nil
		}
		cmd := m.submitAction()
		return m, cmd
	case "esc":
		m.view = viewMenu
		return m, nil
	case "ctrl+s":
		m.view = viewSheet
		return m, nil
	case "ctrl+q":
		m.view = viewQuests
		return m, nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.actInput, cmd = m.actInput.Update(msg)
	return m, cmd
}

func (m model) updateSettings(k string) (tea.Model, tea.Cmd) {
	if m.pipe == nil {
		if k == "esc" || k == "q" {
			m.view = viewMenu
		}
		return m, nil
	}
	next := m.snap.Settings
	p := engine.PolicyFor(m.sess.Tier)
	switch k {
	case "1":
		next.ImageCadence++
		if next.ImageCadence > 10 {
			next.ImageCadence = p.MinImageCadence
		}
	case "2":
		next.HighQualityImages = !next.HighQualityImages
	case "3":
		m.themeName = nextThemeName(m.themeName, 1)
		m.styles = newStyles(paletteFor(m.themeName))
		return m, nil
	case "esc", "q":
		m.view = viewMenu
		return m, nil
	default:
		return m, nil
	}
	// Every change re-runs normalization so tier floors always hold.
	m.pipe.Apply(func(st *engine.GameState) {
		st.Settings = engine.NormalizeSettingsForTier(next, m.sess.Tier)
	})
	m.refreshSnapshot()
	return m, nil
}
