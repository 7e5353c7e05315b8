// rsp_request.go - typed representation of parsed RSP requests (§4.3)

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
	"strconv"
	"strings"
)

// RequestKind tags which RSP letter a Request carries, plus the two
// synthetic kinds (Intr, ErrorReq) produced outside normal packet parsing.
type RequestKind int

const (
	ReqUnknown RequestKind = iota
	ReqQuestion             // ?
	ReqExclaim              // !
	ReqContinue             // c
	ReqContinueSig          // C
	ReqDetach               // D
	ReqReadRegs             // g
	ReqWriteRegs            // G
	ReqSetThread            // H
	ReqCycleStep            // i
	ReqCycleStepSig         // I
	ReqKill                 // k
	ReqReadMem              // m
	ReqWriteMem             // M or X
	ReqReadReg              // p
	ReqWriteReg             // P
	ReqQuery                // q
	ReqStep                 // s
	ReqStepSig              // S
	ReqBackSearch           // t
	ReqThreadInfo           // T
	ReqRemoveBreak          // z
	ReqAddBreak             // Z
	ReqIntr                 // synthetic: 0x03 out-of-band byte
	ReqError                // synthetic: wire error
)

// Request is the parsed form of one inbound RSP packet. Only the fields
// relevant to Kind are populated; the rest are zero.
type Request struct {
	Kind RequestKind

	HasAddress bool
	Address    uint64
	Length     uint64

	Reg int

	Data []byte // raw register/memory bytes, in wire (address) order

	ZType uint64 // the breakpoint-type field of a Z/z request

	QCommand   string // e.g. "Rcmd"
	QExtension string // raw text after hex-decoding, e.g. "go 1"
}

// ParseRequest decodes a wire packet body (post run-length/escape decoding,
// as returned by Codec.RecvPacket) into a Request.
func ParseRequest(body []byte) (Request, error) {
	if len(body) == 0 {
		return Request{}, fmt.Errorf("rsp: empty request")
	}

	letter := body[0]
	rest := string(body[1:])

	switch letter {
	case '?':
		return Request{Kind: ReqQuestion}, nil
	case '!':
		return Request{Kind: ReqExclaim}, nil
	case 'c':
		return parseOptionalAddress(ReqContinue, rest)
	case 'C':
		return Request{Kind: ReqContinueSig}, nil
	case 'D':
		return Request{Kind: ReqDetach}, nil
	case 'g':
		return Request{Kind: ReqReadRegs}, nil
	case 'G':
		data, err := decodeHex(rest)
		if err != nil {
			return Request{}, err
		}
		return Request{Kind: ReqWriteRegs, Data: data}, nil
	case 'H':
		return Request{Kind: ReqSetThread}, nil
	case 'i':
		return Request{Kind: ReqCycleStep}, nil
	case 'I':
		return Request{Kind: ReqCycleStepSig}, nil
	case 'k':
		return Request{Kind: ReqKill}, nil
	case 'm':
		return parseAddrLength(ReqReadMem, rest)
	case 'M':
		return parseWriteMem(ReqWriteMem, rest, false)
	case 'X':
		return parseWriteMem(ReqWriteMem, rest, true)
	case 'p':
		n, err := strconv.ParseUint(rest, 16, 32)
		if err != nil {
			return Request{}, fmt.Errorf("rsp: malformed p request: %w", err)
		}
		return Request{Kind: ReqReadReg, Reg: int(n)}, nil
	case 'P':
		return parseWriteReg(rest)
	case 'q':
		return parseQuery(rest)
	case 's':
		return parseOptionalAddress(ReqStep, rest)
	case 'S':
		return Request{Kind: ReqStepSig}, nil
	case 't':
		return Request{Kind: ReqBackSearch}, nil
	case 'T':
		return Request{Kind: ReqThreadInfo}, nil
	case 'z':
		return parseBreakpointReq(ReqRemoveBreak, rest)
	case 'Z':
		return parseBreakpointReq(ReqAddBreak, rest)
	default:
		return Request{Kind: ReqUnknown}, nil
	}
}

func parseOptionalAddress(kind RequestKind, rest string) (Request, error) {
	if rest == "" {
		return Request{Kind: kind}, nil
	}
	addr, err := strconv.ParseUint(rest, 16, 64)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed address %q: %w", rest, err)
	}
	return Request{Kind: kind, HasAddress: true, Address: addr}, nil
}

func parseAddrLength(kind RequestKind, rest string) (Request, error) {
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) != 2 {
		return Request{}, fmt.Errorf("rsp: malformed %q request", rest)
	}
	addr, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed address: %w", err)
	}
	length, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed length: %w", err)
	}
	return Request{Kind: kind, HasAddress: true, Address: addr, Length: length}, nil
}

func parseWriteMem(kind RequestKind, rest string, binary bool) (Request, error) {
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return Request{}, fmt.Errorf("rsp: malformed write-memory request")
	}
	head := rest[:colon]
	payload := rest[colon+1:]

	parts := strings.SplitN(head, ",", 2)
	if len(parts) != 2 {
		return Request{}, fmt.Errorf("rsp: malformed write-memory header")
	}
	addr, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed address: %w", err)
	}
	length, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed length: %w", err)
	}

	var data []byte
	if binary {
		data = []byte(payload)
	} else {
		data, err = decodeHex(payload)
		if err != nil {
			return Request{}, err
		}
	}
	return Request{Kind: kind, HasAddress: true, Address: addr, Length: length, Data: data}, nil
}

func parseWriteReg(rest string) (Request, error) {
	parts := strings.SplitN(rest, "=", 2)
	if len(parts) != 2 {
		return Request{}, fmt.Errorf("rsp: malformed P request")
	}
	n, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed register index: %w", err)
	}
	data, err := decodeHex(parts[1])
	if err != nil {
		return Request{}, err
	}
	return Request{Kind: ReqWriteReg, Reg: int(n), Data: data}, nil
}

func parseBreakpointReq(kind RequestKind, rest string) (Request, error) {
	parts := strings.SplitN(rest, ",", 3)
	if len(parts) < 2 {
		return Request{}, fmt.Errorf("rsp: malformed Z/z request")
	}
	ztype, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed breakpoint type: %w", err)
	}
	addr, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed address: %w", err)
	}
	var length uint64
	if len(parts) == 3 && parts[2] != "" {
		length, _ = strconv.ParseUint(parts[2], 16, 64)
	}
	return Request{Kind: kind, ZType: ztype, HasAddress: true, Address: addr, Length: length}, nil
}

// parseQuery handles the 'q' requests this stub understands: qRcmd,<hex>.
// Everything else comes back as ReqQuery with an empty QCommand, which the
// controller answers NotSupported.
func parseQuery(rest string) (Request, error) {
	comma := strings.Index(rest, ",")
	name := rest
	hexArg := ""
	if comma >= 0 {
		name = rest[:comma]
		hexArg = rest[comma+1:]
	}
	if name != "Rcmd" {
		return Request{Kind: ReqQuery, QCommand: name}, nil
	}
	decoded, err := decodeHex(hexArg)
	if err != nil {
		return Request{}, fmt.Errorf("rsp: malformed Rcmd argument: %w", err)
	}
	return Request{Kind: ReqQuery, QCommand: name, QExtension: string(decoded)}, nil
}
