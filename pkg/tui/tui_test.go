package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

func TestGetColorScheme_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, ColorSchemes["dracula"], GetColorScheme("dracula"))
	assert.Equal(t, DefaultColorScheme(), GetColorScheme("no-such-scheme"))
}

func TestColorSchemes_AllFieldsSet(t *testing.T) {
	for name, c := range ColorSchemes {
		for _, color := range []string{
			string(c.StatusBackground), string(c.StatusForeground),
			string(c.Healthy), string(c.Unhealthy), string(c.Title),
			string(c.ConfidenceHigh), string(c.ConfidenceMedium), string(c.ConfidenceLow),
			string(c.SystemMessage), string(c.ErrorMessage), string(c.Border),
		} {
			assert.NotEmpty(t, color, "scheme %s has an empty color", name)
		}
	}
}

func TestConfidenceColor(t *testing.T) {
	c := DefaultColorScheme()
	assert.Equal(t, c.ConfidenceHigh, c.ConfidenceColor(gomi.ConfidenceHigh))
	assert.Equal(t, c.ConfidenceMedium, c.ConfidenceColor(gomi.ConfidenceMedium))
	assert.Equal(t, c.ConfidenceLow, c.ConfidenceColor(gomi.ConfidenceLow))
	assert.Equal(t, c.ConfidenceLow, c.ConfidenceColor(""))

	assert.Contains(t, c.ConfidenceBadge("92.0%", gomi.ConfidenceHigh), "92.0% HIGH")
}

func TestSection(t *testing.T) {
	c := DefaultColorScheme()

	assert.Empty(t, c.Section("Notes", []string{"", "  "}, 40))

	out := c.Section("Steps", []string{"1. Rinse", "2. Crush"}, 40)
	assert.Contains(t, out, "Steps")
	assert.Contains(t, out, "  1. Rinse")
	assert.Contains(t, out, "  2. Crush")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "abc def", Wrap("abc def", 0))

	out := Wrap("one two three four five", 10)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(strings.TrimSpace(line)), 10)
	}
}

func TestRenderStatusBar(t *testing.T) {
	c := DefaultColorScheme()

	out := RenderStatusBar("gomi", "previewing", gomi.LangBoth, HealthIndicator{}, c)
	assert.Contains(t, out, "gomi")
	assert.Contains(t, out, "previewing")
	assert.Contains(t, out, "Lang: both")
	assert.Contains(t, out, "checking")

	out = RenderStatusBar("gomi", "idle", gomi.LangJapanese,
		HealthIndicator{Known: true, Healthy: true, Label: "gomi-ai v1.0.0"}, c)
	assert.Contains(t, out, "gomi-ai v1.0.0")
	assert.NotContains(t, out, "checking")
}

func TestDefaultKeyMap_HelpCoversBindings(t *testing.T) {
	km := DefaultKeyMap()

	var all []key.Binding
	for _, group := range km.FullHelp() {
		all = append(all, group...)
	}
	assert.Len(t, all, 10)
	for _, b := range all {
		assert.NotEmpty(t, b.Keys())
		assert.NotEmpty(t, b.Help().Desc)
	}
	assert.NotEmpty(t, km.ShortHelp())

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Confirm))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlR}, km.Retry))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, km.Retry),
		"plain letters belong to the path input")
}

func TestReceiveEventCmd(t *testing.T) {
	emitter := events.NewChanEmitter(4)
	sub := emitter.Subscribe()

	emitter.Emit(context.Background(), events.New(events.EventStale, events.StaleData{Cycle: "c1"}))

	msg := ReceiveEventCmd(sub, ToEventMsg)()
	ev, ok := msg.(EventMsg)
	require.True(t, ok)
	assert.Equal(t, events.EventStale, ev.Type)
	assert.Equal(t, "c1", ev.Data.(events.StaleData).Cycle)

	emitter.Close()
	assert.IsType(t, SubscriptionClosedMsg{}, ReceiveEventCmd(sub, ToEventMsg)())

	assert.Nil(t, ReceiveEventCmd(nil, ToEventMsg))
}
