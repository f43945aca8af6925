package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/audio"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/catalog"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/clock"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/scheduler"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	played []audio.Sound
}

func (r *recorder) Play(s audio.Sound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, s)
}

func (r *recorder) sounds() []audio.Sound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audio.Sound(nil), r.played...)
}

type harness struct {
	app    *App
	eng    *engine.Engine
	sched  *scheduler.Scheduler
	clk    *clock.Manual
	screen tcell.SimulationScreen
	sounds *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(100, 30)

	cat, err := catalog.Default()
	require.NoError(t, err)
	eng := engine.New(cat)
	clk := clock.NewManual(start)
	sched := scheduler.New(eng, clk, scheduler.DefaultTickRate)
	sounds := &recorder{}

	app := New(screen, eng, sched, sounds, Options{FPS: 60, CompactThreshold: 1e6, Clock: clk})
	return &harness{app: app, eng: eng, sched: sched, clk: clk, screen: screen, sounds: sounds}
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func char(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

// screenText reads the back buffer as plain text, one line per row.
func screenText(s tcell.Screen) string {
	w, h := s.Size()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := s.GetContent(x, y)
			if r == 0 {
				r = ' '
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestMapKey(t *testing.T) {
	cases := []struct {
		name string
		ev   *tcell.EventKey
		want Action
	}{
		{"space", char(' '), Action{Intent: IntentClick}},
		{"enter", key(tcell.KeyEnter), Action{Intent: IntentClick}},
		{"up", key(tcell.KeyUp), Action{Intent: IntentUp}},
		{"down", key(tcell.KeyDown), Action{Intent: IntentDown}},
		{"k", char('k'), Action{Intent: IntentUp}},
		{"j", char('j'), Action{Intent: IntentDown}},
		{"b", char('b'), Action{Intent: IntentBuySelected}},
		{"1", char('1'), Action{Intent: IntentBuyIndex, Index: 0}},
		{"9", char('9'), Action{Intent: IntentBuyIndex, Index: 8}},
		{"0", char('0'), Action{}},
		{"q", char('q'), Action{Intent: IntentQuit}},
		{"esc", key(tcell.KeyEscape), Action{Intent: IntentQuit}},
		{"ctrl-c", key(tcell.KeyCtrlC), Action{Intent: IntentQuit}},
		{"tab", key(tcell.KeyTab), Action{}},
		{"x", char('x'), Action{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapKey(tc.ev))
		})
	}
}

func TestClickKeysBufferUntilTick(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.app.Handle(char(' ')))
	assert.True(t, h.app.Handle(key(tcell.KeyEnter)))
	assert.Equal(t, 2, h.sched.Pending())
	assert.Equal(t, 0.0, h.eng.Currency())

	h.sched.Tick()
	assert.Equal(t, 2.0, h.eng.Currency())
	assert.Equal(t, []audio.Sound{audio.SoundClick, audio.SoundClick}, h.sounds.sounds())
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.app.Handle(char('q')))
	assert.True(t, h.app.Handle(tcell.NewEventResize(80, 24)))
}

func TestSelectionClampsAndMovesTooltipListener(t *testing.T) {
	h := newHarness(t)
	n := h.eng.Catalog().Len()

	h.app.Select(0)
	assert.Equal(t, 1, h.eng.Listeners())

	h.app.Handle(key(tcell.KeyUp))
	assert.Equal(t, 0, h.app.Selected())
	assert.Equal(t, 1, h.eng.Listeners())

	for i := 0; i < n+3; i++ {
		h.app.Handle(key(tcell.KeyDown))
		assert.Equal(t, 1, h.eng.Listeners(), "exactly one tooltip listener at a time")
	}
	assert.Equal(t, n-1, h.app.Selected())

	h.app.Deselect()
	assert.Zero(t, h.eng.Listeners())
}

func TestTooltipCountsOnlySelectedPurchases(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.eng.SetCurrency(1_000))

	// Display index 2 is the Ore Extractor (id 1).
	h.app.Select(2)
	h.app.Handle(char('b'))
	h.app.Handle(char('b'))

	// Buying Drill Hardening by hotkey moves the selection and the listener.
	h.app.Handle(char('1'))
	assert.Equal(t, 0, h.app.Selected())

	h.app.mu.Lock()
	tip := h.app.tip
	h.app.mu.Unlock()
	assert.Equal(t, 0, tip.id)
	assert.Equal(t, 1, tip.purchases)

	level, err := h.eng.LevelOf(1)
	require.NoError(t, err)
	assert.Equal(t, 2, level)
	assert.Equal(t,
		[]audio.Sound{audio.SoundPurchase, audio.SoundPurchase, audio.SoundPurchase},
		h.sounds.sounds())
}

func TestDeniedPurchase(t *testing.T) {
	h := newHarness(t)
	h.app.Select(0)

	h.app.Handle(char('b'))

	level, err := h.eng.LevelOf(0)
	require.NoError(t, err)
	assert.Zero(t, level)
	assert.Equal(t, []audio.Sound{audio.SoundDenied}, h.sounds.sounds())

	h.app.Frame(scheduler.FrameInfo{Seq: 1})
	assert.Contains(t, screenText(h.screen), "Need $100.00 for Drill Hardening")

	h.clk.Advance(statusDuration)
	h.app.Frame(scheduler.FrameInfo{Seq: 2})
	assert.NotContains(t, screenText(h.screen), "Need $100.00")
}

func TestHotkeyOutOfRangeIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.app.Select(0)
	require.NoError(t, h.eng.SetCurrency(1e9))

	h.app.Handle(char('9'))
	assert.Equal(t, 0, h.app.Selected())
	assert.Equal(t, 1e9, h.eng.Currency())
}

func TestFrameDrawsSnapshot(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.eng.SetCurrency(12.5))
	h.app.Select(2)

	h.app.Frame(scheduler.FrameInfo{Seq: 1})
	text := screenText(h.screen)

	assert.Contains(t, text, "URANIUM CLICKER")
	assert.Contains(t, text, "Uranium: $12.50")
	assert.Contains(t, text, "Per click: $1.00")
	assert.Contains(t, text, "Income: $0.00/s")
	assert.Contains(t, text, "> [3] Ore Extractor")
	assert.Contains(t, text, "Automates ore extraction")
	assert.Contains(t, text, "Next: $10.00")
	assert.Contains(t, text, "[7] Fission Reactor")
	assert.Contains(t, text, "$1.00M")
}

func TestRunQuitsOnKey(t *testing.T) {
	h := newHarness(t)

	done := make(chan error, 1)
	go func() { done <- h.app.Run(context.Background()) }()

	require.Eventually(t, func() bool { return h.eng.Listeners() == 1 }, time.Second, 5*time.Millisecond)
	h.screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	h.screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
	assert.Zero(t, h.eng.Listeners(), "tooltip listener removed on exit")
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.app.Run(ctx) }()

	require.Eventually(t, func() bool { return h.eng.Listeners() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run ignored cancel")
	}
}
