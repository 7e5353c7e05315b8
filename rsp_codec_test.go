package main

import (
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// pipeConn returns a connected pair of net.Conn, one wrapped in a Codec, the
// other left raw so tests can drive the wire bytes directly.
func pipeConn(t *testing.T) (*Codec, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	log := logrus.NewEntry(logrus.New())
	return NewCodec(server, log), client
}

func TestCodecSendPacketFramesAndWaitsForAck(t *testing.T) {
	codec, client := pipeConn(t)
	defer client.Close()

	done := make(chan error, 1)
	go func() { done <- codec.SendPacket([]byte("OK")) }()

	buf := make([]byte, 64)
	client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "$OK#9a", string(buf[:n]))

	_, err = client.Write([]byte("+"))
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestCodecSendPacketRetriesOnNak(t *testing.T) {
	codec, client := pipeConn(t)
	defer client.Close()

	done := make(chan error, 1)
	go func() { done <- codec.SendPacket([]byte("OK")) }()

	buf := make([]byte, 64)
	client.SetReadDeadline(time.Now().Add(time.Second))
	_, err := client.Read(buf)
	require.NoError(t, err)
	client.Write([]byte("-"))

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, err = client.Read(buf)
	require.NoError(t, err, "codec must resend after a nak")
	client.Write([]byte("+"))

	require.NoError(t, <-done)
}

func TestCodecRecvPacketRoundTrip(t *testing.T) {
	codec, client := pipeConn(t)
	defer client.Close()

	type result struct {
		body []byte
		intr bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, intr, err := codec.RecvPacket()
		done <- result{body, intr, err}
	}()

	client.SetReadDeadline(time.Now().Add(time.Second))
	client.Write([]byte("$g#67"))

	ackBuf := make([]byte, 1)
	client.Read(ackBuf)
	require.Equal(t, byte('+'), ackBuf[0])

	r := <-done
	require.NoError(t, r.err)
	require.False(t, r.intr)
	require.Equal(t, []byte("g"), r.body)
}

func TestCodecRecvPacketBadChecksumNaks(t *testing.T) {
	codec, client := pipeConn(t)
	defer client.Close()

	type result struct {
		body []byte
		intr bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, intr, err := codec.RecvPacket()
		done <- result{body, intr, err}
	}()

	client.Write([]byte("$g#00")) // wrong checksum

	ackBuf := make([]byte, 1)
	client.SetReadDeadline(time.Now().Add(time.Second))
	client.Read(ackBuf)
	require.Equal(t, byte('-'), ackBuf[0], "bad checksum must nak")

	client.Write([]byte("$g#67")) // now correct
	client.Read(ackBuf)
	require.Equal(t, byte('+'), ackBuf[0])

	r := <-done
	require.NoError(t, r.err)
	require.Equal(t, []byte("g"), r.body)
}

func TestCodecRecvPacketInterruptByte(t *testing.T) {
	codec, client := pipeConn(t)
	defer client.Close()

	type result struct {
		body []byte
		intr bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, intr, err := codec.RecvPacket()
		done <- result{body, intr, err}
	}()

	client.Write([]byte{ctrlC})

	r := <-done
	require.NoError(t, r.err)
	require.True(t, r.intr)
	require.Nil(t, r.body)
}

func TestDecodeBodyUnescapesAndExpandsRunLength(t *testing.T) {
	// '}' + (0x03 ^ 0x20) = escaped ctrl-C byte
	got := decodeBody([]byte{'}', 0x03 ^ escapeXor})
	require.Equal(t, []byte{0x03}, got)

	// "a*+" -> run-length: '+' is 0x2b (43), n = 43 - 28 = 15 repeats of 'a'
	got = decodeBody([]byte("a*+"))
	require.Len(t, got, 16) // the original 'a' plus 15 repeats
	for _, b := range got {
		require.Equal(t, byte('a'), b)
	}
}

func TestChecksumMatchesKnownPacket(t *testing.T) {
	require.Equal(t, byte(0x67), checksum([]byte("g")))
	require.Equal(t, byte(0x9a), checksum([]byte("OK")))
}
