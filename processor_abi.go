// processor_abi.go - thin facade the stub uses for register/memory access

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

import "fmt"

// ProcessorABI is the interface the stub consumes to inspect and mutate the
// simulated processor's architectural state. It is the "ABIIf" collaborator
// of §3/§6: a single target word width, an endianness flag, and indexed
// register/memory access. Register and write errors are reported so the
// stub can recover per §7 (zero for reads, Error response for writes);
// nothing here panics.
type ProcessorABI interface {
	// LittleEndian reports the target's byte order.
	LittleEndian() bool

	// RegisterCount returns the number of GDB-numbered registers.
	RegisterCount() int

	// RegisterWidth returns the width, in bytes, of one GDB register and of
	// the target word used by g/G's register hex payload.
	RegisterWidth() int

	// ReadRegister returns the value of GDB register index n.
	ReadRegister(n int) (uint64, error)

	// WriteRegister sets GDB register index n to value.
	WriteRegister(n int, value uint64) error

	// ReadMemoryByte reads one byte at addr.
	ReadMemoryByte(addr uint64) (byte, error)

	// WriteMemoryByte writes one byte at addr.
	WriteMemoryByte(addr uint64, b byte) error

	// SetPC sets the program counter.
	SetPC(addr uint64)

	// GetPC returns the program counter.
	GetPC() uint64
}

// ErrRegisterOutOfRange is returned by ProcessorABI implementations when an
// index is outside [0, RegisterCount).
var ErrRegisterOutOfRange = fmt.Errorf("processor abi: register index out of range")

// ErrMemoryOutOfRange is returned by ProcessorABI implementations when an
// address falls outside addressable memory.
var ErrMemoryOutOfRange = fmt.Errorf("processor abi: address out of range")
