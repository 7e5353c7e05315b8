// stub_listener.go - background reader watching for the urgent interrupt byte (§4.5)

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
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// interruptPollInterval bounds how long the listener's read can block before
// it re-checks whether it has been asked to stop. Grounded on
// go-delve/delve's gdbserver_conn.go SetReadDeadline+retry pattern for
// polling a socket without a dedicated cancellation primitive.
const interruptPollInterval = 50 * time.Millisecond

// interruptListener is the single background goroutine that watches the
// debug socket for the raw 0x03 byte while the simulator is running. It
// never writes to the socket and never parses ordinary packets — those are
// the foreground dialog's job once the controller stops and re-enters the
// request loop (§5 "listener never writes packets, only reads").
type interruptListener struct {
	conn   net.Conn
	onHit  func()
	cancel chan struct{}
	done   chan struct{}
	log    *logrus.Entry
}

func newInterruptListener(conn net.Conn, log *logrus.Entry, onHit func()) *interruptListener {
	return &interruptListener{
		conn:   conn,
		onHit:  onHit,
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
		log:    log,
	}
}

func (l *interruptListener) start() {
	go l.run()
}

func (l *interruptListener) run() {
	defer close(l.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-l.cancel:
			return
		default:
		}

		l.conn.SetReadDeadline(time.Now().Add(interruptPollInterval))
		n, err := l.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Connection gone; nothing more for this listener to do.
			return
		}
		if n == 0 {
			continue
		}
		if buf[0] == ctrlC {
			l.log.Debug("rsp -> interrupt byte (async)")
			l.onHit()
			return
		}
		// Any other byte while running is unexpected per §4.5; ignore it.
	}
}

// stop asks the listener to exit and waits for it to do so. Safe to call
// even if the listener has already exited on its own.
func (l *interruptListener) stop() {
	select {
	case <-l.cancel:
	default:
		close(l.cancel)
	}
	<-l.done
}
