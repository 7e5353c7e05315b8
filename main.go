// main.go - CLI entry point: serves the RSP debug socket against a demo ABI

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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cyclePicoseconds is the fixed per-instruction virtual-time advance the
// demo simulator uses; a real simulator's event-driven clock would vary
// this per opcode, but that is the instruction decoder's job (out of
// scope, §1).
const cyclePicoseconds = 1000

var (
	port          int
	registerCount int
	wordWidth     int
	bigEndian     bool
	memorySize    int
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "simstub",
	Short: "A remote debug target stub speaking the GDB remote serial protocol",
	Long: `simstub is a standalone RSP target stub: it accepts one GDB-compatible
debugger connection over TCP and translates packets into register, memory,
breakpoint and execution-control operations against an in-memory demo
processor, so the stub's wire codec and control state machine can be
exercised without a real simulator attached.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Bind the debug socket and run the demo processor under stub control",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", DefaultPort, "TCP port to listen on")
	serveCmd.Flags().IntVar(&registerCount, "registers", 16, "number of GDB-numbered registers")
	serveCmd.Flags().IntVar(&wordWidth, "word-width", 4, "register/word width in bytes")
	serveCmd.Flags().BoolVar(&bigEndian, "big-endian", false, "target is big-endian (default little-endian)")
	serveCmd.Flags().IntVar(&memorySize, "memory", 1<<20, "demo memory size in bytes")
	serveCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("simstub: invalid log level %q: %w", logLevel, err)
	}
	log.SetLevel(level)
	entry := logrus.NewEntry(log)

	abi := newDemoABI(registerCount, wordWidth, !bigEndian, memorySize)
	sim := newDemoSimulator()
	registry := NewBreakpointRegistry()

	addr := fmt.Sprintf(":%d", port)
	server, err := NewGDBServer(addr, registry, abi, sim, entry, func(ctrl *StubController) {
		runDemoProgram(ctrl, abi, sim, entry)
	})
	if err != nil {
		return err
	}

	entry.WithField("addr", addr).Info("simstub: listening")
	server.Start()
	defer server.Stop()
	select {}
}

// runDemoProgram drives the demo processor's instruction stream: it issues
// addresses sequentially, letting the stub controller's own breakpoint and
// step logic decide when to halt. It stands in for the simulator kernel
// (§1's "out of scope"): a real implementation replaces this loop with its
// own decode-execute cycle calling OnIssue at each retired instruction.
func runDemoProgram(ctrl *StubController, abi *demoABI, sim *demoSimulator, log *logrus.Entry) {
	for !sim.stopped {
		ctrl.OnIssue(abi.GetPC())
		if sim.stopped {
			break
		}
		abi.SetPC(abi.GetPC() + uint64(wordWidth))
		sim.advance(cyclePicoseconds)
	}
	ctrl.OnEndOfSimulation(false)
}
