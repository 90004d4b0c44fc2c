package sctp

import "testing"

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name string
		a, b TSN
		want bool
	}{
		0: {"equal", 100, 100, false},
		1: {"simple-newer", 100, 101, true},
		2: {"simple-older", 101, 100, false},
		3: {"wrap-newer", 0xFFFFFFFF, 0, true},
		4: {"wrap-older", 0, 0xFFFFFFFF, false},
		5: {"half-ring-boundary-newer", 0, 1 << 31, false}, // exactly 2^31 away: not newer (spec: strictly < 2^31)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := IsNewer(tc.a, tc.b)
			if got != tc.want {
				t.Errorf("IsNewer(%d,%d) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestIsNewerOrEqual(t *testing.T) {
	if !IsNewerOrEqual(50, 50) {
		t.Error("equal TSNs should be newer-or-equal")
	}
	if !IsNewerOrEqual(50, 51) {
		t.Error("51 should be newer-or-equal to 50")
	}
	if IsNewerOrEqual(51, 50) {
		t.Error("50 should not be newer-or-equal to 51")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b TSN
		want uint32
	}{
		{100, 105, 5},
		{105, 100, 5},
		{0, 0xFFFFFFFF, 1},
		{0, 1 << 31, 1 << 31},
	}
	for _, tc := range tests {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%d,%d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestStreamSeqWrap(t *testing.T) {
	if !isNewerSeq(0xFFFF, 0) {
		t.Error("stream seq should wrap like TSN does, just modulo 2^16")
	}
}
