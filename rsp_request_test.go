package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestSimpleLetters(t *testing.T) {
	tests := []struct {
		name string
		body string
		want RequestKind
	}{
		{"query", "?", ReqQuestion},
		{"exclaim", "!", ReqExclaim},
		{"detach", "D", ReqDetach},
		{"read regs", "g", ReqReadRegs},
		{"set thread", "H", ReqSetThread},
		{"cycle step", "i", ReqCycleStep},
		{"cycle step sig", "I", ReqCycleStepSig},
		{"kill", "k", ReqKill},
		{"step sig", "S", ReqStepSig},
		{"back search", "t", ReqBackSearch},
		{"thread info", "T", ReqThreadInfo},
		{"continue sig", "C", ReqContinueSig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Kind)
		})
	}
}

func TestParseRequestContinueAndStepAddress(t *testing.T) {
	req, err := ParseRequest([]byte("c"))
	require.NoError(t, err)
	assert.Equal(t, ReqContinue, req.Kind)
	assert.False(t, req.HasAddress)

	req, err = ParseRequest([]byte("c1000"))
	require.NoError(t, err)
	assert.Equal(t, ReqContinue, req.Kind)
	assert.True(t, req.HasAddress)
	assert.Equal(t, uint64(0x1000), req.Address)

	req, err = ParseRequest([]byte("sABCD"))
	require.NoError(t, err)
	assert.Equal(t, ReqStep, req.Kind)
	assert.Equal(t, uint64(0xABCD), req.Address)
}

func TestParseRequestContinueMalformedAddress(t *testing.T) {
	_, err := ParseRequest([]byte("czzzz"))
	assert.Error(t, err)
}

func TestParseRequestReadWriteReg(t *testing.T) {
	req, err := ParseRequest([]byte("p3"))
	require.NoError(t, err)
	assert.Equal(t, ReqReadReg, req.Kind)
	assert.Equal(t, 3, req.Reg)

	req, err = ParseRequest([]byte("P4=78563412"))
	require.NoError(t, err)
	assert.Equal(t, ReqWriteReg, req.Kind)
	assert.Equal(t, 4, req.Reg)
	assert.Equal(t, []byte{0x78, 0x56, 0x34, 0x12}, req.Data)

	_, err = ParseRequest([]byte("P4"))
	assert.Error(t, err, "P without = should be malformed")
}

func TestParseRequestReadWriteRegs(t *testing.T) {
	req, err := ParseRequest([]byte("G0011223344556677"))
	require.NoError(t, err)
	assert.Equal(t, ReqWriteRegs, req.Kind)
	assert.Equal(t, []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}, req.Data)
}

func TestParseRequestReadMem(t *testing.T) {
	req, err := ParseRequest([]byte("m1000,8"))
	require.NoError(t, err)
	assert.Equal(t, ReqReadMem, req.Kind)
	assert.Equal(t, uint64(0x1000), req.Address)
	assert.Equal(t, uint64(8), req.Length)

	_, err = ParseRequest([]byte("m1000"))
	assert.Error(t, err, "m without length should be malformed")
}

func TestParseRequestWriteMemHexAndBinary(t *testing.T) {
	req, err := ParseRequest([]byte("M1000,2:aabb"))
	require.NoError(t, err)
	assert.Equal(t, ReqWriteMem, req.Kind)
	assert.Equal(t, uint64(0x1000), req.Address)
	assert.Equal(t, uint64(2), req.Length)
	assert.Equal(t, []byte{0xaa, 0xbb}, req.Data)

	req, err = ParseRequest([]byte("X1000,2:\xaa\xbb"))
	require.NoError(t, err)
	assert.Equal(t, ReqWriteMem, req.Kind)
	assert.Equal(t, []byte{0xaa, 0xbb}, req.Data, "X carries raw bytes, not hex")
}

func TestParseRequestBreakpoints(t *testing.T) {
	req, err := ParseRequest([]byte("Z0,1000,4"))
	require.NoError(t, err)
	assert.Equal(t, ReqAddBreak, req.Kind)
	assert.Equal(t, uint64(0), req.ZType)
	assert.Equal(t, uint64(0x1000), req.Address)
	assert.Equal(t, uint64(4), req.Length)

	req, err = ParseRequest([]byte("z2,2000"))
	require.NoError(t, err)
	assert.Equal(t, ReqRemoveBreak, req.Kind)
	assert.Equal(t, uint64(2), req.ZType)
	assert.Equal(t, uint64(0x2000), req.Address)
	assert.Equal(t, uint64(0), req.Length)
}

func TestParseRequestQRcmd(t *testing.T) {
	// "status" hex-encoded: 73 74 61 74 75 73
	req, err := ParseRequest([]byte("qRcmd,737461747573"))
	require.NoError(t, err)
	assert.Equal(t, ReqQuery, req.Kind)
	assert.Equal(t, "Rcmd", req.QCommand)
	assert.Equal(t, "status", req.QExtension)
}

func TestParseRequestQUnknownIsNotSupported(t *testing.T) {
	req, err := ParseRequest([]byte("qSupported"))
	require.NoError(t, err)
	assert.Equal(t, ReqQuery, req.Kind)
	assert.Equal(t, "Supported", req.QCommand)
	assert.Empty(t, req.QExtension)
}

func TestParseRequestUnknownLetter(t *testing.T) {
	req, err := ParseRequest([]byte("v"))
	require.NoError(t, err)
	assert.Equal(t, ReqUnknown, req.Kind)
}

func TestParseRequestEmptyBody(t *testing.T) {
	_, err := ParseRequest(nil)
	assert.Error(t, err)
}
