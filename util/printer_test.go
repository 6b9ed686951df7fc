package util

import (
	"strings"
	"testing"
)

func TestDumpByteSliceContainsHexAndASCII(t *testing.T) {
	b := []byte("SSFS0001")
	out := DumpByteSlice(b, 16, true, true, false, nil)
	if !strings.Contains(out, "53 53 46 53") {
		t.Errorf("DumpByteSlice() = %q, want hex bytes for %q", out, string(b))
	}
	if !strings.Contains(out, "SSFS0001") {
		t.Errorf("DumpByteSlice() = %q, want ASCII rendering", out)
	}
}

func TestDumpByteSlicesWithDiffsIdentical(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 4}
	different, out := DumpByteSlicesWithDiffs(a, b, 16, true, true, false)
	if different {
		t.Errorf("DumpByteSlicesWithDiffs() different = true for identical slices")
	}
	if out != "" {
		t.Errorf("DumpByteSlicesWithDiffs() out = %q, want empty for identical slices", out)
	}
}

func TestDumpByteSlicesWithDiffsDifferent(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 9, 3, 4}
	different, out := DumpByteSlicesWithDiffs(a, b, 16, true, true, false)
	if !different {
		t.Fatalf("DumpByteSlicesWithDiffs() different = false, want true")
	}
	if out == "" {
		t.Errorf("DumpByteSlicesWithDiffs() out is empty, want a rendered diff")
	}
}
