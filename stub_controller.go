// stub_controller.go - the stub control state machine (§4.4)

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

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// StopReason tags why the simulator halted at an instruction boundary.
type StopReason int

const (
	StopUnknown StopReason = iota
	StopStep
	StopBreak
	StopSegfault
	StopTimeout
	StopPaused
)

// step_phase values. stepBoundary and stepInterrupt both read back as "2"
// to a caller that only cares about running/armed/stopped, but the
// controller needs to tell a normal step-armed stop apart from one forced
// by the async listener so it can report Step vs. Unknown; see DESIGN.md's
// step-phase encoding note.
const (
	stepRunning = iota
	stepArmed
	stepBoundary
	stepInterrupt
)

// StubController is the state machine described in §4.4: it owns
// step_phase, break_enabled, the timed-continue budget, and the dispatch of
// every RSP request while the simulator is paused.
type StubController struct {
	log      *logrus.Entry
	conn     net.Conn
	codec    *Codec
	registry *BreakpointRegistry
	abi      ProcessorABI
	sim      Simulator

	stepPhase   atomic.Int32
	timeoutFlag atomic.Bool

	breakEnabled bool
	connected    bool
	killed       bool
	timeToGo     int64
	simStartTime int64
	lastBreak    *Breakpoint
	firstRun     bool

	listener *interruptListener
}

// NewStubController wires one debug dialog to its codec, registry, and
// collaborators. One controller exists per accepted connection.
func NewStubController(conn net.Conn, codec *Codec, registry *BreakpointRegistry, abi ProcessorABI, sim Simulator, log *logrus.Entry) *StubController {
	return &StubController{
		log:       log,
		conn:      conn,
		codec:     codec,
		registry:  registry,
		abi:       abi,
		sim:       sim,
		connected: true,
		firstRun:  true,
	}
}

// OnIssue is the instruction-boundary hook the simulator calls at each
// retired instruction, before its effects are visible to the debugger.
func (c *StubController) OnIssue(pc uint64) {
	if c.firstRun {
		c.firstRun = false
		c.breakEnabled = false
		c.requestLoop()
		return
	}
	if reason, stopped := c.checkStep(); stopped {
		c.setStopped(reason)
	}
	if reason, stopped := c.checkBreakpoint(pc); stopped {
		c.setStopped(reason)
	}
}

// checkStep advances or consumes step_phase, per §4.4.
func (c *StubController) checkStep() (StopReason, bool) {
	switch c.stepPhase.Load() {
	case stepArmed:
		c.stepPhase.Store(stepBoundary)
		return 0, false
	case stepBoundary:
		c.stepPhase.Store(stepRunning)
		if c.timeoutFlag.Swap(false) {
			return StopTimeout, true
		}
		return StopStep, true
	case stepInterrupt:
		c.stepPhase.Store(stepRunning)
		return StopUnknown, true
	default:
		return 0, false
	}
}

// checkBreakpoint looks up pc in the registry when breakpoints are armed.
func (c *StubController) checkBreakpoint(pc uint64) (StopReason, bool) {
	if !c.breakEnabled || !c.registry.Has(pc) {
		return 0, false
	}
	bp, ok := c.registry.Get(pc)
	if !ok {
		c.log.WithField("pc", fmt.Sprintf("%#x", pc)).Fatal("rsp: breakpoint hit but registry lookup found nothing")
	}
	c.lastBreak = &bp
	return StopBreak, true
}

// setStopped snapshots the timed-continue budget, disables breakpoints,
// wakes the debugger, and enters the blocking request loop.
func (c *StubController) setStopped(reason StopReason) {
	now := c.sim.NowPS()
	if c.timeToGo > 0 {
		c.timeToGo -= now - c.simStartTime
		if c.timeToGo < 0 {
			c.timeToGo = 0
		}
		c.simStartTime = now
	}
	c.breakEnabled = false
	if c.listener != nil {
		c.listener.stop()
		c.listener = nil
	}
	c.awake(reason)
	c.requestLoop()
}

// awake sends the packet that tells the debugger why the target stopped.
func (c *StubController) awake(reason StopReason) {
	switch reason {
	case StopStep:
		c.send(Response{Kind: RespS, Signal: sigTrap})
	case StopBreak:
		bp := c.lastBreak
		if bp == nil {
			c.log.Fatal("rsp: Break stop with no recorded breakpoint")
			return
		}
		if bp.Kind.IsCode() {
			c.send(Response{Kind: RespS, Signal: sigTrap})
			return
		}
		c.send(Response{Kind: RespT, Signal: sigTrap, Info: []InfoPair{
			{Key: watchKeyFor(bp.Kind), Value: bp.Address},
		}})
	case StopSegfault:
		c.send(Response{Kind: RespS, Signal: sigIll})
	case StopTimeout:
		c.send(Response{Kind: RespOutput, Message: fmt.Sprintf(
			"Specified Simulation time completed - Current simulation time: %d (ps)\n", c.sim.NowPS())})
		c.sendInterrupt()
	case StopPaused:
		c.send(Response{Kind: RespOutput, Message: fmt.Sprintf(
			"Simulation Paused - Current simulation time: %d (ps)\n", c.sim.NowPS())})
		c.sendInterrupt()
	default: // StopUnknown
		c.sendInterrupt()
	}
}

// watchKeyFor maps a data-watchpoint kind to its T-stop info key.
func watchKeyFor(kind BreakpointKind) string {
	switch kind {
	case Write:
		return "watch"
	case Read:
		return "rwatch"
	case Access:
		return "awatch"
	default:
		return "watch"
	}
}

// resume re-enables breakpoints, arms the timed-continue event if one is
// pending, and starts the async-interrupt listener for the running
// interval. Call this, then return from requestLoop, to hand control back
// to the simulator.
func (c *StubController) resume() {
	c.breakEnabled = true
	c.simStartTime = c.sim.NowPS()
	if c.timeToGo > 0 {
		c.sim.ScheduleAfter(c.timeToGo, func() {
			c.stepPhase.Store(stepBoundary)
			c.timeoutFlag.Store(true)
		})
	}
	c.listener = newInterruptListener(c.conn, c.log, func() {
		c.stepPhase.Store(stepInterrupt)
	})
	c.listener.start()
}

// requestLoop reads and dispatches packets until a request hands control
// back to the simulator (a "leave" in §4.4's table).
func (c *StubController) requestLoop() {
	for {
		body, isInterrupt, err := c.codec.RecvPacket()
		if err != nil {
			c.log.WithError(err).Warn("rsp: connection lost while serving request")
			c.connected = false
			c.breakEnabled = false
			return
		}

		var req Request
		if isInterrupt {
			req = Request{Kind: ReqIntr}
		} else if req, err = ParseRequest(body); err != nil {
			c.log.WithError(err).Warn("rsp: malformed request")
			req = Request{Kind: ReqError}
		}

		if !c.dispatch(req) {
			return
		}
	}
}

// send encodes and transmits a response, logging (not propagating) any
// ack/nak failure — a lost connection surfaces on the next RecvPacket.
func (c *StubController) send(resp Response) {
	if err := c.codec.SendPacket(resp.Encode()); err != nil {
		c.log.WithError(err).Warn("rsp: send failed")
	}
}

func (c *StubController) sendInterrupt() {
	if err := c.codec.SendRaw(ctrlC); err != nil {
		c.log.WithError(err).Warn("rsp: interrupt send failed")
	}
}

// dispatch handles one parsed request and reports whether the request loop
// should keep running (true) or return control to the simulator (false).
func (c *StubController) dispatch(req Request) bool {
	switch req.Kind {
	case ReqQuestion:
		c.awake(StopUnknown)
		return true

	case ReqContinue:
		if req.HasAddress {
			c.abi.SetPC(req.Address)
		}
		c.resume()
		return false

	case ReqStep:
		if req.HasAddress {
			c.abi.SetPC(req.Address)
		}
		c.stepPhase.Store(stepArmed)
		c.resume()
		return false

	case ReqReadRegs:
		c.handleReadRegs()
		return true

	case ReqWriteRegs:
		c.handleWriteRegs(req.Data)
		return true

	case ReqReadReg:
		c.handleReadReg(req.Reg)
		return true

	case ReqWriteReg:
		c.handleWriteReg(req.Reg, req.Data)
		return true

	case ReqReadMem:
		c.handleReadMem(req.Address, req.Length)
		return true

	case ReqWriteMem:
		c.handleWriteMem(req.Address, req.Length, req.Data)
		return true

	case ReqAddBreak:
		c.handleAddBreak(req)
		return true

	case ReqRemoveBreak:
		c.registry.Remove(req.Address)
		c.send(Response{Kind: RespOK})
		return true

	case ReqDetach:
		c.registry.ClearAll()
		c.send(Response{Kind: RespOK})
		c.connected = false
		c.resume()
		c.breakEnabled = false
		return false

	case ReqKill:
		c.killed = true
		c.sim.Stop()
		return false

	case ReqIntr:
		c.registry.ClearAll()
		c.stepPhase.Store(stepRunning)
		c.connected = false
		return true

	case ReqError:
		c.connected = false
		c.resume()
		c.breakEnabled = false
		return false

	case ReqQuery:
		return c.handleQuery(req)

	default:
		c.send(Response{Kind: RespNotSupported})
		return true
	}
}

func (c *StubController) handleReadRegs() {
	width := c.abi.RegisterWidth()
	data := make([]byte, 0, c.abi.RegisterCount()*width)
	for i := 0; i < c.abi.RegisterCount(); i++ {
		v, err := c.abi.ReadRegister(i)
		if err != nil {
			v = 0
		}
		data = append(data, valueToBytes(v, width, c.abi.LittleEndian())...)
	}
	c.send(Response{Kind: RespRegRead, Data: data})
}

func (c *StubController) handleWriteRegs(data []byte) {
	width := c.abi.RegisterWidth()
	count := c.abi.RegisterCount()
	written := 0
	failed := false
	for i := 0; i < count; i++ {
		start := i * width
		if start+width > len(data) {
			break
		}
		v := bytesToValue(data[start:start+width], c.abi.LittleEndian())
		if err := c.abi.WriteRegister(i, v); err != nil {
			failed = true
		}
		written++
	}
	if failed || written != count {
		c.send(Response{Kind: RespError})
		return
	}
	c.send(Response{Kind: RespOK})
}

func (c *StubController) handleReadReg(n int) {
	if n < 0 || n >= c.abi.RegisterCount() {
		c.send(Response{Kind: RespRegRead, Data: valueToBytes(0, c.abi.RegisterWidth(), c.abi.LittleEndian())})
		return
	}
	v, err := c.abi.ReadRegister(n)
	if err != nil {
		v = 0
	}
	c.send(Response{Kind: RespRegRead, Data: valueToBytes(v, c.abi.RegisterWidth(), c.abi.LittleEndian())})
}

func (c *StubController) handleWriteReg(n int, data []byte) {
	if n < 0 || n >= c.abi.RegisterCount() {
		c.send(Response{Kind: RespError})
		return
	}
	v := bytesToValue(data, c.abi.LittleEndian())
	if err := c.abi.WriteRegister(n, v); err != nil {
		c.send(Response{Kind: RespError})
		return
	}
	c.send(Response{Kind: RespOK})
}

func (c *StubController) handleReadMem(addr, length uint64) {
	data := make([]byte, length)
	for i := uint64(0); i < length; i++ {
		b, err := c.abi.ReadMemoryByte(addr + i)
		if err != nil {
			b = 0
		}
		data[i] = b
	}
	c.send(Response{Kind: RespMemRead, Data: data})
}

func (c *StubController) handleWriteMem(addr, length uint64, data []byte) {
	if uint64(len(data)) < length {
		c.send(Response{Kind: RespError})
		return
	}
	for i := uint64(0); i < length; i++ {
		if err := c.abi.WriteMemoryByte(addr+i, data[i]); err != nil {
			c.send(Response{Kind: RespError})
			return
		}
	}
	c.send(Response{Kind: RespOK})
}

func (c *StubController) handleAddBreak(req Request) {
	kind, ok := breakpointKindFromZType(req.ZType)
	if !ok {
		c.send(Response{Kind: RespError})
		return
	}
	if !c.registry.Add(kind, req.Address, req.Length) {
		c.send(Response{Kind: RespError})
		return
	}
	c.send(Response{Kind: RespOK})
}

// handleQuery answers 'q' requests. The only one this stub understands is
// qRcmd; everything else is NotSupported.
func (c *StubController) handleQuery(req Request) bool {
	if req.QCommand != "Rcmd" {
		c.send(Response{Kind: RespNotSupported})
		return true
	}
	c.handleMonitor(req.QExtension)
	return true
}

const monitorHelpText = "Help about the custom debugger commands available for this target:\n" +
	"   monitor help:       prints the current message\n" +
	"   monitor time:       returns the current simulation time\n" +
	"   monitor status:     returns the status of the simulation\n" +
	"   monitor go n:       after the 'continue' command is given, it simulates for n (ns) starting from the current time\n" +
	"   monitor go_abs n:   after the 'continue' command is given, it simulates up to instant n (ns)\n"

// handleMonitor dispatches the free-form text carried by qRcmd, per §4.4's
// monitor-command table.
func (c *StubController) handleMonitor(text string) {
	name, arg := splitMonitorCommand(text)
	switch name {
	case "go":
		ns, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || ns < 0 {
			c.send(Response{Kind: RespOutput, Message: "Please specify a positive offset"})
			c.send(Response{Kind: RespNotSupported})
			return
		}
		c.timeToGo = ns * 1000
		c.send(Response{Kind: RespOK})
	case "go_abs":
		ns, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || ns < 0 {
			c.send(Response{Kind: RespOutput, Message: "Please specify a positive offset"})
			c.send(Response{Kind: RespNotSupported})
			return
		}
		c.timeToGo = ns*1000 - c.sim.NowPS()
		c.send(Response{Kind: RespOK})
	case "status":
		msg := fmt.Sprintf("Current simulation time: %d (ps)\n", c.sim.NowPS())
		if c.timeToGo != 0 {
			msg += fmt.Sprintf("Simulating for: %d picoseconds\n", c.timeToGo)
		}
		c.send(Response{Kind: RespOutput, Message: msg})
		c.send(Response{Kind: RespOK})
	case "time":
		c.send(Response{Kind: RespOutput, Message: fmt.Sprintf("Current simulation time: %d (ps)\n", c.sim.NowPS())})
		c.send(Response{Kind: RespOK})
	case "help":
		c.send(Response{Kind: RespOutput, Message: monitorHelpText})
		c.send(Response{Kind: RespOK})
	default:
		c.send(Response{Kind: RespNotSupported})
	}
}

// splitMonitorCommand splits "go 1000" into ("go", "1000"); a command with
// no argument splits to ("status", "").
func splitMonitorCommand(text string) (name, arg string) {
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return text[:i], text[i+1:]
	}
	return text, ""
}

// OnEndOfSimulation is invoked by the simulator once the run finishes. It
// notifies a still-connected debugger and sends the exit packet, skipping
// the notification entirely for an intentional kill (unless erroring), per
// the original stub's signalProgramEnd.
func (c *StubController) OnEndOfSimulation(erroring bool) {
	if !c.connected {
		return
	}
	if c.killed && !erroring {
		return
	}
	if erroring {
		c.send(Response{Kind: RespError})
		c.send(Response{Kind: RespOutput, Message: "Program Ended With an Error\n"})
		c.send(Response{Kind: RespW, Signal: sigAbort})
		return
	}
	c.send(Response{Kind: RespOutput, Message: "Program Correctly Ended\n"})
	c.send(Response{Kind: RespW, Signal: sigQuit})
}
