package main

// fakeSimulator is a Simulator test double with a clock the test advances by
// hand and a single pending-event slot (the controller only ever schedules
// one timed-continue event at a time), distinct from demo_abi.go's
// demoSimulator which exists for the CLI's manual-exercise "serve" command
// rather than for deterministic tests.
type fakeSimulator struct {
	now     int64
	pending []fakeEvent
	stopped bool
}

type fakeEvent struct {
	at int64
	cb func()
}

func newFakeSimulator() *fakeSimulator {
	return &fakeSimulator{}
}

func (s *fakeSimulator) NowPS() int64 { return s.now }

func (s *fakeSimulator) ScheduleAfter(delayPS int64, cb func()) {
	s.pending = append(s.pending, fakeEvent{at: s.now + delayPS, cb: cb})
}

func (s *fakeSimulator) Stop() { s.stopped = true }

// advance moves the clock to now+deltaPS and fires any pending events that
// have come due, in the order they were scheduled.
func (s *fakeSimulator) advance(deltaPS int64) {
	s.now += deltaPS
	var due, kept []fakeEvent
	for _, ev := range s.pending {
		if ev.at <= s.now {
			due = append(due, ev)
		} else {
			kept = append(kept, ev)
		}
	}
	s.pending = kept
	for _, ev := range due {
		ev.cb()
	}
}

// fakeABI is a ProcessorABI test double backed by plain slices, with an
// optional forced error on a specific register/address for exercising the
// stub's read-zero / write-Error fallback paths (§7).
type fakeABI struct {
	littleEndian bool
	width        int
	regs         []uint64
	mem          []byte
	pc           uint64

	failRegister int // -1 disables
	failAddress  int64
}

func newFakeABI(regCount, width int, littleEndian bool, memSize int) *fakeABI {
	return &fakeABI{
		littleEndian: littleEndian,
		width:        width,
		regs:         make([]uint64, regCount),
		mem:          make([]byte, memSize),
		failRegister: -1,
		failAddress:  -1,
	}
}

func (a *fakeABI) LittleEndian() bool { return a.littleEndian }
func (a *fakeABI) RegisterCount() int { return len(a.regs) }
func (a *fakeABI) RegisterWidth() int { return a.width }

func (a *fakeABI) ReadRegister(n int) (uint64, error) {
	if n == a.failRegister {
		return 0, ErrRegisterOutOfRange
	}
	if n < 0 || n >= len(a.regs) {
		return 0, ErrRegisterOutOfRange
	}
	return a.regs[n], nil
}

func (a *fakeABI) WriteRegister(n int, value uint64) error {
	if n == a.failRegister {
		return ErrRegisterOutOfRange
	}
	if n < 0 || n >= len(a.regs) {
		return ErrRegisterOutOfRange
	}
	a.regs[n] = value
	return nil
}

func (a *fakeABI) ReadMemoryByte(addr uint64) (byte, error) {
	if int64(addr) == a.failAddress {
		return 0, ErrMemoryOutOfRange
	}
	if addr >= uint64(len(a.mem)) {
		return 0, ErrMemoryOutOfRange
	}
	return a.mem[addr], nil
}

func (a *fakeABI) WriteMemoryByte(addr uint64, b byte) error {
	if int64(addr) == a.failAddress {
		return ErrMemoryOutOfRange
	}
	if addr >= uint64(len(a.mem)) {
		return ErrMemoryOutOfRange
	}
	a.mem[addr] = b
	return nil
}

func (a *fakeABI) SetPC(addr uint64) { a.pc = addr }
func (a *fakeABI) GetPC() uint64     { return a.pc }
