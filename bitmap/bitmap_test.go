package bitmap

import "testing"

func TestSetClearIsSet(t *testing.T) {
	bm := New(64)

	set, err := bm.IsSet(10)
	if err != nil {
		t.Fatalf("IsSet(10) error = %v", err)
	}
	if set {
		t.Fatalf("IsSet(10) = true before Set, want false")
	}

	if err := bm.Set(10); err != nil {
		t.Fatalf("Set(10) error = %v", err)
	}
	set, err = bm.IsSet(10)
	if err != nil {
		t.Fatalf("IsSet(10) error = %v", err)
	}
	if !set {
		t.Fatalf("IsSet(10) = false after Set, want true")
	}

	if err := bm.Clear(10); err != nil {
		t.Fatalf("Clear(10) error = %v", err)
	}
	set, _ = bm.IsSet(10)
	if set {
		t.Fatalf("IsSet(10) = true after Clear, want false")
	}
}

func TestSetIdempotent(t *testing.T) {
	bm := New(8)
	if err := bm.Set(3); err != nil {
		t.Fatalf("Set(3) error = %v", err)
	}
	if err := bm.Set(3); err != nil {
		t.Fatalf("second Set(3) error = %v", err)
	}
	set, _ := bm.IsSet(3)
	if !set {
		t.Fatalf("IsSet(3) = false, want true")
	}
}

func TestOutOfRange(t *testing.T) {
	bm := New(8)
	if _, err := bm.IsSet(100); err == nil {
		t.Fatalf("IsSet(100) on 8-bit bitmap: want error, got nil")
	}
	if err := bm.Set(100); err == nil {
		t.Fatalf("Set(100) on 8-bit bitmap: want error, got nil")
	}
}

func TestFirstFree(t *testing.T) {
	tests := []struct {
		name   string
		nBits  uint32
		setBit []uint32
		start  uint32
		want   int
	}{
		{name: "all free", nBits: 16, start: 0, want: 0},
		{name: "first bit taken", nBits: 16, setBit: []uint32{0, 1, 2}, start: 0, want: 3},
		{name: "start offset", nBits: 16, setBit: []uint32{0, 1, 2}, start: 5, want: 5},
		{name: "crosses byte boundary", nBits: 16, setBit: []uint32{0, 1, 2, 3, 4, 5, 6, 7}, start: 0, want: 8},
		{name: "none free", nBits: 8, setBit: []uint32{0, 1, 2, 3, 4, 5, 6, 7}, start: 0, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := New(tt.nBits)
			for _, b := range tt.setBit {
				if err := bm.Set(b); err != nil {
					t.Fatalf("Set(%d) error = %v", b, err)
				}
			}
			got := bm.FirstFree(tt.start)
			if got != tt.want {
				t.Errorf("FirstFree(%d) = %d, want %d", tt.start, got, tt.want)
			}
		})
	}
}
