/*
Package audio
File: sounds.go
Description:
    Feedback sounds synthesized at play time with beep generators.
    No sample files ship with the game.
*/

package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Sound identifies one of the game's effects.
type Sound int

const (
	SoundClick    Sound = iota // Short tick on every click
	SoundPurchase              // Two-note chime on a successful purchase
	SoundDenied                // Low blip when a purchase is refused
)

func (s Sound) String() string {
	switch s {
	case SoundClick:
		return "click"
	case SoundPurchase:
		return "purchase"
	case SoundDenied:
		return "denied"
	default:
		return fmt.Sprintf("sound(%d)", int(s))
	}
}

// note is one enveloped sine tone.
func note(rate beep.SampleRate, freq float64, length, release time.Duration) (beep.Streamer, error) {
	tone, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, err
	}
	return newFade(beep.Take(rate.N(length), tone), rate.N(length), rate.N(release)), nil
}

// Streamer builds a fresh, finite streamer for a sound at the given volume (0..1).
func Streamer(s Sound, rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	var (
		st  beep.Streamer
		err error
	)
	switch s {
	case SoundClick:
		st, err = note(rate, 1320, 25*time.Millisecond, 20*time.Millisecond)
	case SoundPurchase:
		var first, second beep.Streamer
		if first, err = note(rate, 987.77, 80*time.Millisecond, 30*time.Millisecond); err != nil {
			break
		}
		if second, err = note(rate, 1318.51, 200*time.Millisecond, 150*time.Millisecond); err != nil {
			break
		}
		st = beep.Seq(first, second)
	case SoundDenied:
		st, err = note(rate, 110, 120*time.Millisecond, 60*time.Millisecond)
	default:
		return nil, fmt.Errorf("audio: unknown %v", s)
	}
	if err != nil {
		return nil, fmt.Errorf("audio: %v: %w", s, err)
	}
	return withVolume(st, volume), nil
}

// withVolume scales a stream linearly; 0 or less is silent.
// math.Log2(0) is -Inf, so silence uses the Silent flag instead.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(math.Min(vol, 1)), Silent: false}
}

// fade applies a linear release over the last samples of a stream to avoid clicks.
type fade struct {
	streamer beep.Streamer
	pos      int
	total    int
	release  int
}

func newFade(s beep.Streamer, total, release int) beep.Streamer {
	if release > total {
		release = total
	}
	return &fade{streamer: s, total: total, release: release}
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	start := f.total - f.release
	for i := 0; i < n; i++ {
		if f.pos >= start && f.release > 0 {
			vol := float64(f.total-f.pos) / float64(f.release)
			if vol < 0 {
				vol = 0
			}
			samples[i][0] *= vol
			samples[i][1] *= vol
		}
		f.pos++
	}
	return n, ok
}

func (f *fade) Err() error { return f.streamer.Err() }
