// rsp_response.go - typed RSP responses and their wire encoding (§4.3)

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

// ResponseKind tags which shape of RSP response a Response carries.
type ResponseKind int

const (
	RespOK ResponseKind = iota
	RespNotSupported
	RespError
	RespRegRead
	RespMemRead
	RespS
	RespT
	RespW
	RespOutput
)

// InfoPair is one key:value entry in a T-stop response, e.g. watch:1000.
type InfoPair struct {
	Key   string
	Value uint64
}

// Response is the stub's reply to one request, or an unsolicited stop
// notification.
type Response struct {
	Kind ResponseKind

	Data []byte // hex-payload source for RegRead/MemRead

	Signal byte // S/T/W signal number

	Info []InfoPair // T-stop key:value pairs

	Message string // Output console text
}

// Encode renders a Response as the bytes that go between '$' and '#'
// (before Codec.SendPacket's framing/escaping).
func (r Response) Encode() []byte {
	switch r.Kind {
	case RespOK:
		return []byte("OK")
	case RespNotSupported:
		return nil
	case RespError:
		return []byte("E00")
	case RespRegRead, RespMemRead:
		return encodeHex(r.Data)
	case RespS:
		return []byte(fmt.Sprintf("S%02x", r.Signal))
	case RespT:
		out := fmt.Sprintf("T%02x", r.Signal)
		for _, p := range r.Info {
			out += fmt.Sprintf("%s:%x;", p.Key, p.Value)
		}
		return []byte(out)
	case RespW:
		return []byte(fmt.Sprintf("W%02x", r.Signal))
	case RespOutput:
		return append([]byte("O"), encodeHex([]byte(r.Message))...)
	default:
		return nil
	}
}

// Signal numbers used by the stop/exit responses (§4.4).
const (
	sigTrap  = 5
	sigIll   = 4
	sigQuit  = 3
	sigAbort = 6
)
