package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chase3718/monoscillator/synth"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// -------------------- Hot-swap config --------------------

// defaultPreferred: devices matching any of these are picked first.
var defaultPreferred = []string{"Launchkey", "Novation"}

// defaultExcluded: virtual/system ports that are never auto-connected.
var defaultExcluded = []string{"Midi Through", "Through Port", "Dummy"}

const midiRescanInterval = 1000 * time.Millisecond

// -------------------- MIDIWatcher --------------------

// MIDIWatcher monitors available MIDI inputs and keeps a connection to the
// preferred device. It handles hot-plug (new device appears) and hot-unplug
// (device disappears) transparently.
//
// Every incoming message is copied into ring for the audio callback; the
// listener goroutine is the ring's only producer. onDisconnect is called
// (from a goroutine) when the active device is lost; callers use it to
// release held notes, since their note-offs will never arrive.
type MIDIWatcher struct {
	mu           sync.Mutex
	drv          *rtmididrv.Driver
	inPort       drivers.In
	stopFn       func()
	connected    bool
	selectedName string
	lastRescanAt time.Time

	preferred []string
	excluded  []string

	ring         *synth.EventRing
	onDisconnect func()
}

// NewMIDIWatcher creates a watcher and initialises the underlying rtmidi
// driver. Call Close() when done.
func NewMIDIWatcher(ring *synth.EventRing, preferred, excluded []string, onDisconnect func()) (*MIDIWatcher, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &MIDIWatcher{
		drv:          drv,
		preferred:    preferred,
		excluded:     excluded,
		ring:         ring,
		onDisconnect: onDisconnect,
	}, nil
}

// Close shuts down the active MIDI connection and the rtmidi driver.
func (m *MIDIWatcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeConn()
	m.drv.Close()
}

// Connected reports the name of the open device, if any.
func (m *MIDIWatcher) Connected() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedName, m.connected
}

// Tick should be called on a regular interval from the control loop. It
// scans for devices, auto-connects to a preferred one, and detects
// disappearances.
func (m *MIDIWatcher) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if !m.lastRescanAt.IsZero() && now.Sub(m.lastRescanAt) < midiRescanInterval {
		return
	}
	m.lastRescanAt = now

	inputs := m.listInputs()

	if m.connected {
		for _, n := range inputs {
			if n == m.selectedName {
				return
			}
		}
		logger.Warn("midi: device disappeared", "device", m.selectedName)
		m.dropConn()
		return
	}

	if len(inputs) == 0 {
		return
	}
	cand, ok := pickPreferred(inputs, m.preferred)
	if !ok {
		logger.Debug("midi: no preferred device", "available", strings.Join(inputs, ", "))
		return
	}
	if err := m.openByName(cand); err != nil {
		logger.Error("midi: connect failed", "device", cand, "err", err)
	}
}

// -------------------- internal --------------------

func (m *MIDIWatcher) listInputs() []string {
	ins, err := m.drv.Ins()
	if err != nil {
		logger.Error("midi: list inputs failed", "err", err)
		return nil
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	names = filterExcluded(names, m.excluded)
	logger.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func filterExcluded(names, excluded []string) []string {
	out := names[:0]
	for _, name := range names {
		skip := false
		for _, pat := range excluded {
			if containsCI(name, pat) {
				skip = true
				break
			}
		}
		if skip {
			logger.Debug("midi: input excluded", "device", name)
			continue
		}
		out = append(out, name)
	}
	return out
}

// pickPreferred returns the first input matching a preferred pattern, in
// pattern order. With no match, a lone input is accepted.
func pickPreferred(inputs, preferred []string) (string, bool) {
	for _, pat := range preferred {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (m *MIDIWatcher) closeConn() {
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	if m.inPort != nil {
		_ = m.inPort.Close()
		m.inPort = nil
	}
	m.connected = false
	m.selectedName = ""
}

// dropConn closes a lost connection and reports it. Caller holds mu.
func (m *MIDIWatcher) dropConn() {
	m.closeConn()
	m.lastRescanAt = time.Time{} // rescan on the next tick
	if m.onDisconnect != nil {
		go m.onDisconnect()
	}
}

// listenFailed drops the connection to name after a listener error, unless
// the watcher has already moved on to another device.
func (m *MIDIWatcher) listenFailed(name string, err error) {
	logger.Warn("midi: listener error", "device", name, "err", err)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected && m.selectedName == name {
		m.dropConn()
	}
}

func (m *MIDIWatcher) openByName(name string) error {
	ins, err := m.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		if !m.ring.PushMessage(msg) {
			// driver callback thread: debug only
			logger.Debug("midi: event ring full, message dropped", "msg", msg.String())
		}
	}, midi.HandleError(func(listenErr error) {
		// the listener goroutine must not close its own port
		go m.listenFailed(name, listenErr)
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	m.inPort = found
	m.stopFn = stop
	m.connected = true
	m.selectedName = name
	logger.Info("midi: connected", "device", name)
	return nil
}

// -------------------- utility --------------------

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// splitPatterns parses a comma separated flag value.
func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
