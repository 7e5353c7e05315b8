package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseEncodeSimpleKinds(t *testing.T) {
	assert.Equal(t, []byte("OK"), Response{Kind: RespOK}.Encode())
	assert.Equal(t, []byte("E00"), Response{Kind: RespError}.Encode())
	assert.Nil(t, Response{Kind: RespNotSupported}.Encode())
}

func TestResponseEncodeRegMemRead(t *testing.T) {
	resp := Response{Kind: RespRegRead, Data: []byte{0x12, 0x34}}
	assert.Equal(t, []byte("1234"), resp.Encode())

	resp = Response{Kind: RespMemRead, Data: []byte{0xab, 0xcd, 0xef}}
	assert.Equal(t, []byte("abcdef"), resp.Encode())
}

func TestResponseEncodeSAndW(t *testing.T) {
	resp := Response{Kind: RespS, Signal: sigTrap}
	assert.Equal(t, []byte("S05"), resp.Encode())

	resp = Response{Kind: RespW, Signal: sigQuit}
	assert.Equal(t, []byte("W03"), resp.Encode())
}

func TestResponseEncodeTWithWatchpoint(t *testing.T) {
	resp := Response{Kind: RespT, Signal: sigTrap, Info: []InfoPair{
		{Key: "watch", Value: 0x1000},
	}}
	assert.Equal(t, []byte("T05watch:1000;"), resp.Encode())
}

func TestResponseEncodeOutput(t *testing.T) {
	resp := Response{Kind: RespOutput, Message: "hi"}
	// 'h' = 0x68, 'i' = 0x69
	assert.Equal(t, []byte("O6869"), resp.Encode())
}

func TestWatchKeyFor(t *testing.T) {
	tests := []struct {
		kind BreakpointKind
		want string
	}{
		{Write, "watch"},
		{Read, "rwatch"},
		{Access, "awatch"},
		{CodeHW, "watch"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, watchKeyFor(tt.kind))
	}
}
