/*
Package audio
File: player.go
Description:
    Player owns the speaker. Init is optional: until it succeeds, Play is a no-op,
    so the game runs the same with or without a sound device.
*/

package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Player plays sound effects through the system speaker.
// A Player that failed to initialize, or was never initialized, silently drops sounds.
type Player struct {
	mu     sync.Mutex
	volume float64
	ready  bool

	// output is speaker.Play once initialized; tests swap it out.
	output func(...beep.Streamer)
}

// NewPlayer returns an uninitialized player at the given master volume (0..1).
func NewPlayer(volume float64) *Player {
	return &Player{volume: volume}
}

// Init opens the speaker. Failure is not fatal: the game runs without sound.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	p.output = speaker.Play
	p.ready = true
	return nil
}

// Ready reports whether sounds will be heard.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Play starts a sound without waiting for it to finish.
func (p *Player) Play(s Sound) {
	p.mu.Lock()
	ready, out, vol := p.ready, p.output, p.volume
	p.mu.Unlock()

	if !ready || out == nil {
		return
	}
	st, err := Streamer(s, sampleRate, vol)
	if err != nil {
		log.Printf("AUDIO: %v", err)
		return
	}
	out(st)
}

// Close releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		speaker.Close()
		p.ready = false
		p.output = nil
	}
}
