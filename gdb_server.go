// gdb_server.go - TCP listener binding codec, controller, and registry per connection

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

	"github.com/sirupsen/logrus"
)

// DefaultPort is the RSP listen port per §6.
const DefaultPort = 1500

// GDBServer binds a single TCP listener and, per §6's "single client,"
// serves exactly one debug dialog at a time: accepting a second connection
// while one is active is refused by closing it immediately.
type GDBServer struct {
	log      *logrus.Entry
	listener net.Listener
	registry *BreakpointRegistry
	abi      ProcessorABI
	sim      Simulator

	done    chan struct{}
	onReady func(*StubController)
}

// NewGDBServer binds addr (":1500"-style) and returns an unstarted server.
// onReady is called once per accepted connection with the freshly wired
// controller, so the caller's simulator loop can start delivering
// OnIssue(pc) calls to it.
func NewGDBServer(addr string, registry *BreakpointRegistry, abi ProcessorABI, sim Simulator, log *logrus.Entry, onReady func(*StubController)) (*GDBServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("gdb server: bind failed: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &GDBServer{
		log:      log,
		listener: ln,
		registry: registry,
		abi:      abi,
		sim:      sim,
		done:     make(chan struct{}),
		onReady:  onReady,
	}, nil
}

// Addr returns the bound listen address, useful when addr was ":0".
func (s *GDBServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Start begins accepting connections in a goroutine.
func (s *GDBServer) Start() {
	go s.acceptLoop()
}

// Stop closes the listener and waits for the accept loop to exit.
func (s *GDBServer) Stop() {
	s.listener.Close()
	<-s.done
}

func (s *GDBServer) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.handleConn(conn)
	}
}

// handleConn wires one accepted connection's codec and controller and hands
// the controller to onReady. Per §6 "single client," this call blocks the
// accept loop until the debugger detaches or the connection drops, so a
// second concurrent connection is never wired to the same ABI/registry.
func (s *GDBServer) handleConn(conn net.Conn) {
	defer conn.Close()
	log := s.log.WithField("remote", conn.RemoteAddr().String())
	log.Info("rsp: debugger connected")

	codec := NewCodec(conn, log)
	controller := NewStubController(conn, codec, s.registry, s.abi, s.sim, log)
	s.onReady(controller)

	log.Info("rsp: debugger disconnected")
}
