package main

import (
	"context"
	"fmt"
	"time"

	"github.com/chase3718/monoscillator/synth"
	"github.com/gdamore/tcell/v2"
)

// volumeSlider models the 0-100 volume control. The engine sees value/100.
type volumeSlider struct {
	value int
	step  int
}

const (
	sliderMax  = 100
	sliderStep = 5
	sliderPage = 25
)

func newVolumeSlider(volume float64) *volumeSlider {
	s := &volumeSlider{step: sliderStep}
	s.Set(int(volume*sliderMax + 0.5))
	return s
}

func (s *volumeSlider) Set(v int) { s.value = min(max(v, 0), sliderMax) }

func (s *volumeSlider) Add(delta int) { s.Set(s.value + delta) }

// Volume maps the slider range onto the engine's [0, 1] gain.
func (s *volumeSlider) Volume() float64 { return float64(s.value) / sliderMax }

// SetFromRow maps a click on a vertical track of height h (row 0 at the top)
// to a value, snapped to the step. The top of the track is full volume.
func (s *volumeSlider) SetFromRow(row, h int) {
	if h <= 1 {
		s.Set(sliderMax)
		return
	}
	row = min(max(row, 0), h-1)
	v := (h - 1 - row) * sliderMax / (h - 1)
	s.Set((v + s.step/2) / s.step * s.step)
}

// volumeUI is the terminal control surface: a vertical volume slider, the
// sounding note, and the computer keyboard as a latching MIDI source.
type volumeUI struct {
	screen   tcell.Screen
	engine   *synth.Engine
	slider   *volumeSlider
	keyboard *KeyboardState
	status   func() string

	// track geometry from the last draw, for mouse hits
	trackX, trackTop, trackH int
}

func newVolumeUI(screen tcell.Screen, e *synth.Engine, kb *KeyboardState, status func() string) *volumeUI {
	return &volumeUI{
		screen:   screen,
		engine:   e,
		slider:   newVolumeSlider(e.Volume()),
		keyboard: kb,
		status:   status,
	}
}

// run polls screen events and redraws until quit or ctx is cancelled.
func (u *volumeUI) run(ctx context.Context) {
	u.screen.EnableMouse()
	u.screen.HideCursor()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	u.draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || !u.handleEvent(ev) {
				return
			}
			u.draw()
		case <-ticker.C:
			u.draw()
		}
	}
}

func (u *volumeUI) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return u.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			u.clickTrack(x, y)
		}
	case *tcell.EventResize:
		u.screen.Sync()
	}
	return true
}

// handleKey applies one key press. It returns false when the UI should exit.
func (u *volumeUI) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		u.setVolume(u.slider.step)
	case tcell.KeyDown:
		u.setVolume(-u.slider.step)
	case tcell.KeyPgUp:
		u.setVolume(sliderPage)
	case tcell.KeyPgDn:
		u.setVolume(-sliderPage)
	case tcell.KeyHome:
		u.setVolume(sliderMax)
	case tcell.KeyEnd:
		u.setVolume(-sliderMax)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case ' ':
			u.panicRelease()
		case 'z':
			u.keyboard.ShiftOctave(-1)
		case 'x':
			u.keyboard.ShiftOctave(1)
		default:
			u.keyboard.Press(r)
		}
	}
	return true
}

func (u *volumeUI) setVolume(delta int) {
	u.slider.Add(delta)
	u.engine.SetVolume(u.slider.Volume())
	logger.Debug("ui: volume", "value", u.slider.value)
}

func (u *volumeUI) clickTrack(x, y int) {
	if x != u.trackX || y < u.trackTop || y >= u.trackTop+u.trackH {
		return
	}
	u.slider.SetFromRow(y-u.trackTop, u.trackH)
	u.engine.SetVolume(u.slider.Volume())
	logger.Debug("ui: volume", "value", u.slider.value)
}

func (u *volumeUI) panicRelease() {
	logger.Info("ui: panic release")
	u.keyboard.ReleaseAll()
	u.engine.Panic()
}

var (
	styleLabel = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleTrack = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFill  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleNote  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

func (u *volumeUI) draw() {
	u.screen.Clear()
	w, h := u.screen.Size()

	u.trackX = 2
	u.trackTop = 1
	u.trackH = max(h-4, 1)

	// inverted: the top of the track is 100
	filled := u.slider.value * u.trackH / sliderMax
	for i := 0; i < u.trackH; i++ {
		y := u.trackTop + u.trackH - 1 - i
		if i < filled {
			u.screen.SetContent(u.trackX, y, '█', nil, styleFill)
		} else {
			u.screen.SetContent(u.trackX, y, '│', nil, styleTrack)
		}
	}
	u.text(0, u.trackTop+u.trackH, fmt.Sprintf("%3d", u.slider.value), styleLabel)

	col := 6
	if col < w {
		note := "-"
		if n := u.engine.ActiveNote(); n >= 0 {
			note = fmt.Sprintf("%s  %.2f Hz", synth.NoteName(n), synth.NoteFrequency(uint8(n)))
		}
		u.text(col, 1, "note  "+note, styleNote)
		u.text(col, 2, fmt.Sprintf("oct   %d", u.keyboard.Octave), styleLabel)
		u.text(col, 3, fmt.Sprintf("latch %d", len(u.keyboard.ActiveNotes)), styleLabel)
		if u.status != nil {
			u.text(col, 5, u.status(), styleLabel)
		}
		u.text(col, h-2, "↑↓ volume  a-k notes  z/x octave", styleLabel)
		u.text(col, h-1, "space panic  q quit", styleLabel)
	}

	u.screen.Show()
}

func (u *volumeUI) text(x, y int, s string, style tcell.Style) {
	w, h := u.screen.Size()
	if y < 0 || y >= h {
		return
	}
	for _, r := range s {
		if x >= w {
			return
		}
		u.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
