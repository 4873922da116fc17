// Package tui is a terminal front end for a running webpaneld: a live list
// of panel instances with keys for the registry verbs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"webpanel/pkg/types"
)

// Backend is the subset of the daemon API the TUI drives. *client.Client
// satisfies it.
type Backend interface {
	List(ctx context.Context) (types.InstancesResponse, error)
	Open(ctx context.Context, req types.OpenRequest) (types.InstanceStatus, error)
	Navigate(ctx context.Context, id, url string) (types.InstanceStatus, error)
	Focus(ctx context.Context, id string) error
	ToggleFindBar(ctx context.Context, id string) error
	Find(ctx context.Context, id string, req types.FindRequest) error
	FindNext(ctx context.Context, id string) error
	FindPrev(ctx context.Context, id string) error
	CloseFind(ctx context.Context, id string) error
	Close(ctx context.Context, id string) error
	Purge(ctx context.Context) (int, error)
}

// RefreshInterval is how often the instance list is polled.
const RefreshInterval = time.Second

type inputMode int

const (
	modeList inputMode = iota
	modeOpen
	modeNavigate
	modeFind
)

func (m inputMode) prompt() string {
	switch m {
	case modeOpen:
		return "open id> "
	case modeNavigate:
		return "url> "
	case modeFind:
		return "find> "
	default:
		return ""
	}
}

type listMsg struct {
	resp types.InstancesResponse
	err  error
}

type doneMsg struct {
	verb string
	id   string
	note string
	err  error
}

type tickMsg time.Time

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	stateStyles   = map[string]lipgloss.Style{
		"ready":         lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"initializing":  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"uninitialized": dimStyle,
		"disposed":      dimStyle,
	}
)

// Model is the bubbletea model.
type Model struct {
	backend Backend
	timeout time.Duration

	instances []types.InstanceStatus
	active    string
	cursor    int

	mode  inputMode
	input textinput.Model

	status string
	err    error
	width  int
}

// New returns a model polling backend.
func New(backend Backend) Model {
	ti := textinput.New()
	ti.CharLimit = 2048
	return Model{backend: backend, timeout: 5 * time.Second, input: ti}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) refresh() tea.Cmd {
	b, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := b.List(ctx)
		return listMsg{resp: resp, err: err}
	}
}

// run wraps a verb into a command reporting doneMsg.
func (m Model) run(verb, id string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		note, err := fn(ctx)
		return doneMsg{verb: verb, id: id, note: note, err: err}
	}
}

// selected returns the id under the cursor, or "" to address the active instance.
func (m Model) selected() string {
	if m.cursor >= 0 && m.cursor < len(m.instances) {
		return m.instances[m.cursor].ID
	}
	return ""
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())
	case listMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.instances = msg.resp.Instances
		m.active = msg.resp.Active
		if m.cursor >= len(m.instances) {
			m.cursor = len(m.instances) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil
	case doneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
		} else {
			m.err = nil
			m.status = strings.TrimSpace(msg.verb + " " + msg.id + " " + msg.note)
		}
		return m, m.refresh()
	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b, id := m.backend, m.selected()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.instances)-1 {
			m.cursor++
		}
	case "r":
		return m, m.refresh()
	case "enter", "a":
		return m, m.run("activate", id, func(ctx context.Context) (string, error) { return "", b.Focus(ctx, id) })
	case "o":
		return m.startInput(modeOpen, ""), textinput.Blink
	case "g":
		url := ""
		if id != "" {
			url = m.instances[m.cursor].URL
		}
		return m.startInput(modeNavigate, url), textinput.Blink
	case "/":
		return m.startInput(modeFind, ""), textinput.Blink
	case "f":
		return m, m.run("findbar", id, func(ctx context.Context) (string, error) { return "", b.ToggleFindBar(ctx, id) })
	case "n":
		return m, m.run("next", id, func(ctx context.Context) (string, error) { return "", b.FindNext(ctx, id) })
	case "N", "p":
		return m, m.run("prev", id, func(ctx context.Context) (string, error) { return "", b.FindPrev(ctx, id) })
	case "esc":
		return m, m.run("close find", id, func(ctx context.Context) (string, error) { return "", b.CloseFind(ctx, id) })
	case "x", "d":
		if id == "" {
			return m, nil
		}
		return m, m.run("close", id, func(ctx context.Context) (string, error) { return "", b.Close(ctx, id) })
	case "P":
		return m, m.run("purge", "", func(ctx context.Context) (string, error) {
			n, err := b.Purge(ctx)
			return fmt.Sprintf("(%d removed)", n), err
		})
	}
	return m, nil
}

func (m Model) startInput(mode inputMode, value string) Model {
	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		mode, value := m.mode, strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.input.Blur()
		return m, m.submit(mode, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(mode inputMode, value string) tea.Cmd {
	b, id := m.backend, m.selected()
	switch mode {
	case modeOpen:
		return m.run("open", value, func(ctx context.Context) (string, error) {
			st, err := b.Open(ctx, types.OpenRequest{ID: value})
			return st.State, err
		})
	case modeNavigate:
		if value == "" {
			return nil
		}
		return m.run("navigate", id, func(ctx context.Context) (string, error) {
			_, err := b.Navigate(ctx, id, value)
			return value, err
		})
	case modeFind:
		return m.run("find", id, func(ctx context.Context) (string, error) {
			return value, b.Find(ctx, id, types.FindRequest{Query: value})
		})
	}
	return nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("webpanel"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d instances, active %s", len(m.instances), m.active)))
	sb.WriteString("\n\n")
	if len(m.instances) == 0 {
		sb.WriteString(dimStyle.Render("  no instances, press o to open one"))
		sb.WriteString("\n")
	}
	for i, st := range m.instances {
		sb.WriteString(m.row(i, st))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if m.mode != modeList {
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	} else if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	} else if m.status != "" {
		sb.WriteString(dimStyle.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render("enter activate  o open  g navigate  / find  n/N next/prev  f findbar  esc close find  x close  P purge  q quit"))
	return sb.String()
}

func (m Model) row(i int, st types.InstanceStatus) string {
	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}
	marker := " "
	if st.ID == m.active {
		marker = "*"
	}
	state := st.State
	if style, ok := stateStyles[state]; ok {
		state = style.Render(fmt.Sprintf("%-13s", st.State))
	}
	title := st.Title
	if title == "" {
		title = st.URL
	}
	find := ""
	if st.Find.State == "active" || st.Find.ShowBar {
		find = fmt.Sprintf("  [%d/%d]", st.Find.Current, st.Find.Total)
	}
	if st.InitFailed {
		find += errorStyle.Render("  init failed: " + st.InitError)
	}
	line := fmt.Sprintf("%s%s %-16s %s %s%s", cursor, marker, st.ID, state, title, find)
	if i == m.cursor {
		return selectedStyle.Render(line)
	}
	return line
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(backend Backend) error {
	_, err := tea.NewProgram(New(backend), tea.WithAltScreen()).Run()
	return err
}
