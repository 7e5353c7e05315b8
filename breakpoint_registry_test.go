package main

import "testing"

// ---------------------------------------------------------------------------
// Add / Has / Get / Remove
// ---------------------------------------------------------------------------

func TestBreakpointRegistryAddHasGet(t *testing.T) {
	r := NewBreakpointRegistry()

	if r.Has(0x1000) {
		t.Fatalf("Has(0x1000) = true before Add")
	}

	if ok := r.Add(CodeHW, 0x1000, 1); !ok {
		t.Fatalf("Add(CodeHW, 0x1000, 1) = false, want true")
	}

	if !r.Has(0x1000) {
		t.Fatalf("Has(0x1000) = false after Add")
	}

	bp, ok := r.Get(0x1000)
	if !ok {
		t.Fatalf("Get(0x1000) ok = false, want true")
	}
	if bp.Kind != CodeHW || bp.Address != 0x1000 || bp.Length != 1 {
		t.Errorf("Get(0x1000) = %+v, want {CodeHW 0x1000 1}", bp)
	}
}

func TestBreakpointRegistryAddRejectsDuplicateAddress(t *testing.T) {
	r := NewBreakpointRegistry()
	if ok := r.Add(CodeHW, 0x2000, 0); !ok {
		t.Fatalf("first Add = false, want true")
	}
	if ok := r.Add(Write, 0x2000, 4); ok {
		t.Fatalf("second Add at same address = true, want false (one entry per address)")
	}
	bp, _ := r.Get(0x2000)
	if bp.Kind != CodeHW {
		t.Errorf("Get(0x2000).Kind = %v, want CodeHW (first insert must win)", bp.Kind)
	}
}

func TestBreakpointRegistryRemove(t *testing.T) {
	r := NewBreakpointRegistry()
	r.Add(Read, 0x3000, 2)

	if ok := r.Remove(0x3000); !ok {
		t.Fatalf("Remove(0x3000) = false, want true")
	}
	if r.Has(0x3000) {
		t.Errorf("Has(0x3000) = true after Remove")
	}
	if ok := r.Remove(0x3000); ok {
		t.Errorf("Remove(0x3000) on already-removed address = true, want false")
	}
}

func TestBreakpointRegistryClearAll(t *testing.T) {
	r := NewBreakpointRegistry()
	r.Add(CodeHW, 0x1000, 0)
	r.Add(Write, 0x2000, 4)
	r.Add(Access, 0x3000, 1)

	r.ClearAll()

	for _, addr := range []uint64{0x1000, 0x2000, 0x3000} {
		if r.Has(addr) {
			t.Errorf("Has(%#x) = true after ClearAll", addr)
		}
	}
}

// ---------------------------------------------------------------------------
// breakpointKindFromZType
// ---------------------------------------------------------------------------

func TestBreakpointKindFromZType(t *testing.T) {
	tests := []struct {
		ztype uint64
		want  BreakpointKind
		ok    bool
	}{
		{0, CodeHW, true},
		{1, CodeHW, true},
		{2, Write, true},
		{3, Read, true},
		{4, Access, true},
		{5, 0, false},
		{99, 0, false},
	}

	for _, tt := range tests {
		got, ok := breakpointKindFromZType(tt.ztype)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("breakpointKindFromZType(%d) = (%v, %v), want (%v, %v)", tt.ztype, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBreakpointKindIsCode(t *testing.T) {
	tests := []struct {
		kind BreakpointKind
		want bool
	}{
		{CodeHW, true},
		{CodeMem, true},
		{Write, false},
		{Read, false},
		{Access, false},
	}

	for _, tt := range tests {
		if got := tt.kind.IsCode(); got != tt.want {
			t.Errorf("%v.IsCode() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
