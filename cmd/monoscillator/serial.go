package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/chase3718/monoscillator/synth"
	"go.bug.st/serial"
)

// SerialMIDI reads DIN MIDI from a UART (for example a USB-serial adapter at
// 31250 baud) and queues complete messages for the audio callback.
type SerialMIDI struct {
	port serial.Port
	name string
	ring *synth.EventRing

	done chan struct{}
	wg   sync.WaitGroup
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int, ring *synth.EventRing) (*SerialMIDI, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)
	return &SerialMIDI{port: p, name: name, ring: ring, done: make(chan struct{})}, nil
}

// Start launches the read loop.
func (s *SerialMIDI) Start() {
	s.wg.Add(1)
	go s.readLoop()
}

func (s *SerialMIDI) readLoop() {
	defer s.wg.Done()
	n, err := pumpMIDI(s.port, s.ring)
	select {
	case <-s.done:
		logger.Debug("serial: read loop stopped", "device", s.name, "messages", n)
	default:
		logger.Error("serial: read error", "device", s.name, "messages", n, "err", err)
	}
}

// pumpMIDI frames bytes from r into ring until r fails. It returns the number
// of messages queued.
func pumpMIDI(r io.Reader, ring *synth.EventRing) (int, error) {
	var fp frameParser
	buf := make([]byte, 256)
	queued := 0
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			msg, ok := fp.Feed(b)
			if !ok {
				continue
			}
			if !ring.PushMessage(msg) {
				logger.Debug("serial: event ring full, message dropped")
				continue
			}
			queued++
		}
		if err != nil {
			return queued, err
		}
		if n == 0 {
			// go.bug.st/serial reports a closed port as a zero read
			return queued, io.EOF
		}
	}
}

// Close stops the read loop and closes the port.
func (s *SerialMIDI) Close() {
	logger.Info("serial: closing port", "device", s.name)
	close(s.done)
	err := s.port.Close()
	s.wg.Wait()
	if err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("serial: close failed", "device", s.name, "err", err)
	}
}
