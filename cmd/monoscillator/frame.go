package main

// DIN MIDI serial link constants.
const (
	MIDIBaud      = 31250
	sysExStart    = 0xF0
	sysExEnd      = 0xF7
	realtimeFirst = 0xF8
)

// frameParser reassembles complete MIDI messages from a raw serial byte
// stream:
//
//	[status][data1][data2]   channel voice, 3 bytes (note on/off, CC, ...)
//	[status][data1]          program change, channel pressure
//	[data1][data2]           running status: previous status byte reused
//
// Real-time bytes (0xF8-0xFF) may appear anywhere and are dropped. SysEx is
// skipped until its terminator. System common messages clear running status.
type frameParser struct {
	status  byte
	buf     [3]byte
	n       int
	need    int
	inSysEx bool
}

// dataLen returns the number of data bytes that follow status.
func dataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 2
	}
	switch status {
	case 0xF1, 0xF3:
		return 1
	case 0xF2:
		return 2
	}
	return 0
}

// Feed consumes one byte and returns a complete message when one is ready.
// The returned slice aliases the parser and is valid until the next call.
func (p *frameParser) Feed(b byte) ([]byte, bool) {
	if b >= realtimeFirst {
		return nil, false
	}

	if b&0x80 != 0 {
		p.inSysEx = b == sysExStart
		if b == sysExEnd || p.inSysEx {
			p.status = 0
			p.n = 0
			return nil, false
		}
		p.buf[0] = b
		p.n = 1
		p.need = dataLen(b)
		if b >= 0xF0 {
			p.status = 0 // system common cancels running status
		} else {
			p.status = b
		}
		if p.need == 0 {
			p.n = 0
			return p.buf[:1], true
		}
		return nil, false
	}

	if p.inSysEx {
		return nil, false
	}
	if p.n == 0 {
		if p.status == 0 {
			return nil, false // stray data byte
		}
		p.buf[0] = p.status
		p.n = 1
		p.need = dataLen(p.status)
	}

	p.buf[p.n] = b
	p.n++
	if p.n == p.need+1 {
		msg := p.buf[:p.n]
		p.n = 0
		return msg, true
	}
	return nil, false
}
