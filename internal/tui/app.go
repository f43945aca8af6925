/*
Package tui
File: app.go
Description:
    Terminal front-end for a local game.

    Three loops run while the app is up:
    - The scheduler ticks the simulation at the logic rate.
    - A RenderLoop redraws from an engine snapshot at the display rate.
    - The event loop turns key presses into clicks, selection moves, and purchases.

    The selected upgrade's tooltip listens for purchases only while it is selected.
*/

package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/audio"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/clock"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/scheduler"
)

const statusDuration = 2 * time.Second

// Sounder plays feedback sounds. *audio.Player satisfies it.
type Sounder interface {
	Play(audio.Sound)
}

type silent struct{}

func (silent) Play(audio.Sound) {}

// Options tune the app.
type Options struct {
	FPS              int
	CompactThreshold float64
	Clock            clock.Clock
}

type tooltip struct {
	id        int
	active    bool
	purchases int
}

// App owns the terminal session for one game.
type App struct {
	screen tcell.Screen
	eng    *engine.Engine
	sched  *scheduler.Scheduler
	sounds Sounder
	opts   Options

	mu          sync.Mutex
	selected    int
	tip         tooltip
	unsubscribe func()
	status      string
	statusUntil time.Time
}

// New wires an app to an initialized screen. sounds may be nil.
func New(screen tcell.Screen, eng *engine.Engine, sched *scheduler.Scheduler, sounds Sounder, opts Options) *App {
	if sounds == nil {
		sounds = silent{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	return &App{screen: screen, eng: eng, sched: sched, sounds: sounds, opts: opts}
}

// Selected returns the index of the highlighted upgrade.
func (a *App) Selected() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// Select highlights the upgrade at index i (clamped) and moves the tooltip listener to it.
func (a *App) Select(i int) {
	n := a.eng.Catalog().Len()
	if n == 0 {
		return
	}
	i = max(0, min(i, n-1))
	u, _ := a.eng.Catalog().At(i)

	a.mu.Lock()
	if a.tip.active && a.tip.id == u.ID {
		a.selected = i
		a.mu.Unlock()
		return
	}
	old := a.unsubscribe
	a.selected = i
	a.tip = tooltip{id: u.ID, active: true}
	a.unsubscribe = nil
	a.mu.Unlock()

	if old != nil {
		old()
	}

	id := u.ID
	unsub := a.eng.Subscribe(func(ev engine.PurchaseEvent) {
		if ev.UpgradeID != id {
			return
		}
		a.mu.Lock()
		if a.tip.active && a.tip.id == id {
			a.tip.purchases++
		}
		a.mu.Unlock()
	})

	a.mu.Lock()
	a.unsubscribe = unsub
	a.mu.Unlock()
}

// Deselect hides the tooltip and stops its listener.
func (a *App) Deselect() {
	a.mu.Lock()
	old := a.unsubscribe
	a.unsubscribe = nil
	a.tip = tooltip{}
	a.mu.Unlock()

	if old != nil {
		old()
	}
}

func (a *App) setStatus(msg string) {
	a.mu.Lock()
	a.status = msg
	a.statusUntil = a.opts.Clock.Now().Add(statusDuration)
	a.mu.Unlock()
}

// Handle applies one terminal event. It returns false when the user asked to quit.
func (a *App) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.apply(MapKey(ev))
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) apply(act Action) bool {
	switch act.Intent {
	case IntentQuit:
		return false
	case IntentClick:
		a.sched.Click()
		a.sounds.Play(audio.SoundClick)
	case IntentUp:
		a.Select(a.Selected() - 1)
	case IntentDown:
		a.Select(a.Selected() + 1)
	case IntentBuySelected:
		a.buy(a.Selected())
	case IntentBuyIndex:
		if act.Index < a.eng.Catalog().Len() {
			a.Select(act.Index)
			a.buy(act.Index)
		}
	}
	return true
}

// buy must be called without a.mu held; a successful purchase notifies the tooltip listener.
func (a *App) buy(index int) {
	u, ok := a.eng.Catalog().At(index)
	if !ok {
		return
	}

	level, err := a.eng.Purchase(u.ID)
	var funds *engine.InsufficientFundsError
	switch {
	case errors.As(err, &funds):
		a.setStatus(fmt.Sprintf("Need %s for %s", view{threshold: a.opts.CompactThreshold}.money(funds.Cost), u.Name))
		a.sounds.Play(audio.SoundDenied)
	case err != nil:
		log.Printf("TUI: purchase %s: %v", u, err)
	default:
		a.setStatus(fmt.Sprintf("Bought %s (level %d)", u.Name, level))
		a.sounds.Play(audio.SoundPurchase)
	}
}

// Frame draws the current state. It is the RenderLoop callback.
func (a *App) Frame(scheduler.FrameInfo) {
	snap := a.eng.Snapshot()

	a.mu.Lock()
	if a.status != "" && !a.opts.Clock.Now().Before(a.statusUntil) {
		a.status = ""
	}
	v := view{selected: a.selected, tip: a.tip, status: a.status, threshold: a.opts.CompactThreshold}
	a.mu.Unlock()

	draw(a.screen, snap, v)
	a.screen.Show()
}

// Run drives the game until the user quits or ctx is cancelled.
// The caller owns the screen and must Fini it afterwards.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Select(a.Selected())
	defer a.Deselect()

	loop := scheduler.NewRenderLoop(a.opts.FPS, a.opts.Clock, a.Frame)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.sched.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Println("TUI: started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !a.Handle(ev) {
				log.Println("TUI: quit requested")
				loop.Stop()
				return nil
			}
		}
	}
}
