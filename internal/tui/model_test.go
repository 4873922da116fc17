package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webpanel/pkg/types"
)

type fakeBackend struct {
	list  types.InstancesResponse
	calls []string
	find  types.FindRequest
	err   error
}

func (f *fakeBackend) note(verb, id string) error {
	f.calls = append(f.calls, verb+":"+id)
	return f.err
}

func (f *fakeBackend) List(context.Context) (types.InstancesResponse, error) { return f.list, nil }
func (f *fakeBackend) Open(_ context.Context, req types.OpenRequest) (types.InstanceStatus, error) {
	return types.InstanceStatus{ID: req.ID, State: "initializing"}, f.note("open", req.ID)
}
func (f *fakeBackend) Navigate(_ context.Context, id, url string) (types.InstanceStatus, error) {
	return types.InstanceStatus{ID: id, URL: url}, f.note("navigate", id+"="+url)
}
func (f *fakeBackend) Focus(_ context.Context, id string) error { return f.note("focus", id) }
func (f *fakeBackend) ToggleFindBar(_ context.Context, id string) error {
	return f.note("findbar", id)
}
func (f *fakeBackend) Find(_ context.Context, id string, req types.FindRequest) error {
	f.find = req
	return f.note("find", id)
}
func (f *fakeBackend) FindNext(_ context.Context, id string) error  { return f.note("next", id) }
func (f *fakeBackend) FindPrev(_ context.Context, id string) error  { return f.note("prev", id) }
func (f *fakeBackend) CloseFind(_ context.Context, id string) error { return f.note("closefind", id) }
func (f *fakeBackend) Close(_ context.Context, id string) error     { return f.note("close", id) }
func (f *fakeBackend) Purge(context.Context) (int, error)           { return 1, f.note("purge", "") }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds k and runs the resulting command once, feeding its message back.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(Model)
	if cmd != nil {
		if msg, ok := cmd().(doneMsg); ok {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func loaded(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	b.list = types.InstancesResponse{
		Active: "b",
		Instances: []types.InstanceStatus{
			{ID: "a", State: "ready", Title: "Alpha", URL: "https://a.example"},
			{ID: "b", State: "ready", Title: "Beta", Find: types.FindStatus{State: "active", Current: 2, Total: 5}},
		},
	}
	m := New(b)
	msg := m.refresh()()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestListRendersInstances(t *testing.T) {
	m := loaded(t, &fakeBackend{})
	view := m.View()
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "[2/5]")
	assert.Contains(t, view, "active b")
}

func TestVerbKeysTargetSelection(t *testing.T) {
	b := &fakeBackend{}
	m := loaded(t, b)
	m = press(t, m, "n")
	m = press(t, m, "down")
	m = press(t, m, "N")
	m = press(t, m, "f")
	m = press(t, m, "enter")
	m = press(t, m, "esc")
	m = press(t, m, "x")
	assert.Equal(t, []string{"next:a", "prev:b", "findbar:b", "focus:b", "closefind:b", "close:b"}, b.calls)
	assert.Contains(t, m.status, "close b")
}

func TestFindPrompt(t *testing.T) {
	b := &fakeBackend{}
	m := loaded(t, b)
	m = press(t, m, "/")
	require.Equal(t, modeFind, m.mode)
	m = typeText(m, "panel")
	assert.Contains(t, m.View(), "find> ")
	m = press(t, m, "enter")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, []string{"find:a"}, b.calls)
	assert.Equal(t, "panel", b.find.Query)
}

func TestNavigatePromptPrefillsURL(t *testing.T) {
	b := &fakeBackend{}
	m := loaded(t, b)
	m = press(t, m, "g")
	assert.Equal(t, "https://a.example", m.input.Value())
	m.input.SetValue("example.com")
	m = press(t, m, "enter")
	assert.Equal(t, []string{"navigate:a=example.com"}, b.calls)
}

func TestEscCancelsPrompt(t *testing.T) {
	b := &fakeBackend{}
	m := loaded(t, b)
	m = press(t, m, "o")
	m = typeText(m, "docs")
	m = press(t, m, "esc")
	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, b.calls)
}

func TestErrorsAreShown(t *testing.T) {
	b := &fakeBackend{err: errors.New("webpaneld: 404 instance not found: a")}
	m := loaded(t, b)
	m = press(t, m, "n")
	require.Error(t, m.err)
	assert.True(t, strings.Contains(m.View(), "instance not found"))
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeBackend{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
