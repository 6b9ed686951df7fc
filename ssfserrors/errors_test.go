package ssfserrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{NotMounted, -6},
		{AlreadyMounted, -16},
		{NoAccess, -2},
		{NotExist, -3},
		{BadMagic, -9},
		{NoSpace, -7},
		{OutOfRange, -4},
		{InvalidInode, -12},
		{Unused, -17},
		{BadArgs, -15},
		{ShortIO, -5},
		{IO, -14},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			e := New(tt.kind, "op", nil)
			if e.Code() != tt.want {
				t.Errorf("Code() = %d, want %d", e.Code(), tt.want)
			}
		})
	}
}

func TestIsUnwraps(t *testing.T) {
	inner := New(NoSpace, "allocateDataBlock", nil)
	wrapped := fmt.Errorf("write: %w", inner)

	if !Is(wrapped, NoSpace) {
		t.Errorf("Is(wrapped, NoSpace) = false, want true")
	}
	if Is(wrapped, IO) {
		t.Errorf("Is(wrapped, IO) = true, want false")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("device closed")
	e := New(IO, "device.ReadSector", cause)
	if !errors.Is(e, cause) {
		t.Errorf("errors.Is(e, cause) = false, want true")
	}
}
