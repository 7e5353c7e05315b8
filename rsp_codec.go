// rsp_codec.go - RSP wire framing: packet boundaries, checksum, escaping, ack/nak

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
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/sirupsen/logrus"
)

// ErrConnectionLost is returned when the socket closes or errors mid-packet.
var ErrConnectionLost = errors.New("rsp: connection lost")

// ErrBadChecksum is returned when a checksum still fails to verify after
// the retry budget is exhausted.
var ErrBadChecksum = errors.New("rsp: bad checksum, too many retries")

const maxChecksumRetries = 5

// escapeXor is the value the RSP spec mandates for escaping $, #, } and *.
const escapeXor byte = 0x20

// ctrlC is the urgent out-of-band interrupt byte.
const ctrlC = 0x03

var hexdigit = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// Codec frames and unframes RSP packets over a single TCP connection. It is
// not safe for concurrent use: the stub controller and the async listener
// coordinate so only one of them reads the socket at a time (§5).
type Codec struct {
	conn net.Conn
	rdr  *bufio.Reader
	log  *logrus.Entry
}

// NewCodec wraps conn in an RSP framer.
func NewCodec(conn net.Conn, log *logrus.Entry) *Codec {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Codec{conn: conn, rdr: bufio.NewReader(conn), log: log}
}

// checksum computes the lower-byte modulo-256 sum of payload.
func checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// encode escapes payload per §4.1 and frames it as $<data>#<hh>.
func encode(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+4)
	out = append(out, '$')
	for _, b := range payload {
		switch b {
		case '$', '#', '}', '*':
			out = append(out, '}', b^escapeXor)
		default:
			out = append(out, b)
		}
	}
	sum := checksum(out[1:])
	out = append(out, '#', hexdigit[sum>>4], hexdigit[sum&0xf])
	return out
}

// decodeBody applies binary-escape unescaping and run-length expansion to a
// packet body (the bytes between $ and #). Run-length decoding only applies
// on the inbound path per §4.1.
func decodeBody(body []byte) []byte {
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		switch b := body[i]; b {
		case '}':
			if i+1 < len(body) {
				out = append(out, body[i+1]^escapeXor)
				i++
			}
		case '*':
			if i+1 < len(body) && len(out) > 0 {
				n := int(body[i+1]) - 28
				r := out[len(out)-1]
				for j := 0; j < n; j++ {
					out = append(out, r)
				}
				i++
			} else {
				out = append(out, b)
			}
		default:
			out = append(out, b)
		}
	}
	return out
}

// SendPacket frames payload, writes it, and waits for a +/- ack, retrying on
// nak up to maxChecksumRetries times.
func (c *Codec) SendPacket(payload []byte) error {
	framed := encode(payload)
	for attempt := 0; ; attempt++ {
		c.log.WithField("packet", string(framed)).Debug("rsp <-")
		if _, err := c.conn.Write(framed); err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
		ack, err := c.rdr.ReadByte()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}
		if ack == '+' {
			return nil
		}
		if attempt >= maxChecksumRetries {
			return ErrBadChecksum
		}
	}
}

// SendRaw writes bytes directly with no framing, used for the ctrl-C
// interrupt byte.
func (c *Codec) SendRaw(b byte) error {
	c.log.Debug("rsp <- interrupt byte")
	if _, err := c.conn.Write([]byte{b}); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}

// RecvPacket reads bytes until it either delivers a fully verified packet
// body or encounters the out-of-band ctrl-C byte, which it reports via
// isInterrupt=true with a nil body.
func (c *Codec) RecvPacket() (body []byte, isInterrupt bool, err error) {
	for attempt := 0; ; {
		b, rerr := c.rdr.ReadByte()
		if rerr != nil {
			if rerr == io.EOF {
				return nil, false, ErrConnectionLost
			}
			return nil, false, fmt.Errorf("%w: %v", ErrConnectionLost, rerr)
		}
		if b == ctrlC {
			return nil, true, nil
		}
		if b != '$' {
			continue
		}

		raw, rerr := c.rdr.ReadBytes('#')
		if rerr != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrConnectionLost, rerr)
		}
		raw = raw[:len(raw)-1] // drop trailing '#'

		var sumHex [2]byte
		if _, rerr := io.ReadFull(c.rdr, sumHex[:]); rerr != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrConnectionLost, rerr)
		}

		want := checksum(raw)
		got, perr := parseHexByte(sumHex[0], sumHex[1])
		if perr != nil || got != want {
			if attempt >= maxChecksumRetries {
				c.conn.Write([]byte{'-'})
				return nil, false, ErrBadChecksum
			}
			attempt++
			c.conn.Write([]byte{'-'})
			continue
		}

		c.conn.Write([]byte{'+'})
		c.log.WithField("packet", "$"+string(raw)+"#"+string(sumHex[:])).Debug("rsp ->")
		return decodeBody(raw), false, nil
	}
}

func parseHexByte(hi, lo byte) (byte, error) {
	h, err := hexNibble(hi)
	if err != nil {
		return 0, err
	}
	l, err := hexNibble(lo)
	if err != nil {
		return 0, err
	}
	return h<<4 | l, nil
}

func hexNibble(b byte) (byte, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("rsp: invalid hex digit %q", b)
	}
}
