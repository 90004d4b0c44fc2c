package sctp

// TSN is a Transmission Sequence Number: a 32-bit identifier of a DATA chunk
// within an association. TSNs wrap around modulo 2^32, so ordering between
// two TSNs is only meaningful through the serial-number arithmetic below —
// never through a raw '<' or '>' comparison.
type TSN uint32

// StreamSeq is a per-stream sequence number for ordered messages. It wraps
// around modulo 2^16.
type StreamSeq uint16

// AddTSN returns a+delta, wrapping modulo 2^32.
func AddTSN(a TSN, delta uint32) TSN { return a + TSN(delta) }

// isNewerUint32 implements the serial number arithmetic of RFC 1982 for a
// power-of-two modulus, shared by TSN (2^32) and StreamSeq (2^16) comparisons.
func isNewerUint32(a, b, mod uint64) bool {
	d := (b - a) & (mod - 1)
	return d != 0 && d < mod/2
}

// IsNewer reports whether b is strictly newer than a in TSN serial order,
// i.e. 0 < (b-a) mod 2^32 < 2^31. This is the only sanctioned way to order
// two TSNs: raw integer comparison is wrong in the presence of wraparound.
func IsNewer(a, b TSN) bool {
	return isNewerUint32(uint64(a), uint64(b), 1<<32)
}

// IsNewerOrEqual reports whether a == b or b is newer than a.
func IsNewerOrEqual(a, b TSN) bool {
	return a == b || IsNewer(a, b)
}

// Distance returns the length of the shorter arc between a and b on the TSN
// ring: min((b-a) mod 2^32, (a-b) mod 2^32).
func Distance(a, b TSN) uint32 {
	fwd := uint32(b - a)
	bwd := uint32(a - b)
	if fwd < bwd {
		return fwd
	}
	return bwd
}

// isNewerSeq is the StreamSeq (16-bit) analogue of IsNewer, used when
// building FORWARD-TSN records to compare per-stream sequence numbers.
func isNewerSeq(a, b StreamSeq) bool {
	return isNewerUint32(uint64(a), uint64(b), 1<<16)
}
