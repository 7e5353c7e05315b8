// demo_abi.go - in-memory ProcessorABI and Simulator used by the CLI's serve command

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import "sort"

// demoABI is a flat register file plus a byte-addressable memory array. It
// exists so `simstub serve` has something to attach the RSP stub to without
// pulling in an instruction decoder or ELF loader, both out of scope per
// §1.
type demoABI struct {
	littleEndian bool
	width        int
	regs         []uint64
	mem          []byte
	pc           uint64
}

func newDemoABI(registerCount, wordBytes int, littleEndian bool, memSize int) *demoABI {
	return &demoABI{
		littleEndian: littleEndian,
		width:        wordBytes,
		regs:         make([]uint64, registerCount),
		mem:          make([]byte, memSize),
	}
}

func (a *demoABI) LittleEndian() bool { return a.littleEndian }
func (a *demoABI) RegisterCount() int { return len(a.regs) }
func (a *demoABI) RegisterWidth() int { return a.width }

func (a *demoABI) ReadRegister(n int) (uint64, error) {
	if n < 0 || n >= len(a.regs) {
		return 0, ErrRegisterOutOfRange
	}
	return a.regs[n], nil
}

func (a *demoABI) WriteRegister(n int, value uint64) error {
	if n < 0 || n >= len(a.regs) {
		return ErrRegisterOutOfRange
	}
	a.regs[n] = value
	return nil
}

func (a *demoABI) ReadMemoryByte(addr uint64) (byte, error) {
	if addr >= uint64(len(a.mem)) {
		return 0, ErrMemoryOutOfRange
	}
	return a.mem[addr], nil
}

func (a *demoABI) WriteMemoryByte(addr uint64, b byte) error {
	if addr >= uint64(len(a.mem)) {
		return ErrMemoryOutOfRange
	}
	a.mem[addr] = b
	return nil
}

func (a *demoABI) SetPC(addr uint64) { a.pc = addr }
func (a *demoABI) GetPC() uint64     { return a.pc }

// demoEvent is one entry on demoSimulator's calendar.
type demoEvent struct {
	at int64
	cb func()
}

// demoSimulator is a fake event calendar: NowPS advances only when the
// caller asks it to (via advance), and ScheduleAfter/Stop are the only
// primitives the stub controller actually uses.
type demoSimulator struct {
	now     int64
	events  []demoEvent
	stopped bool
}

func newDemoSimulator() *demoSimulator {
	return &demoSimulator{}
}

func (s *demoSimulator) NowPS() int64 { return s.now }

func (s *demoSimulator) ScheduleAfter(delayPS int64, cb func()) {
	s.events = append(s.events, demoEvent{at: s.now + delayPS, cb: cb})
	sort.Slice(s.events, func(i, j int) bool { return s.events[i].at < s.events[j].at })
}

func (s *demoSimulator) Stop() { s.stopped = true }

// advance moves the virtual clock forward by one instruction's worth of
// picoseconds, firing any calendar events that have come due.
func (s *demoSimulator) advance(cyclePS int64) {
	s.now += cyclePS
	var due, kept []demoEvent
	for _, ev := range s.events {
		if ev.at <= s.now {
			due = append(due, ev)
		} else {
			kept = append(kept, ev)
		}
	}
	s.events = kept
	for _, ev := range due {
		ev.cb()
	}
}
