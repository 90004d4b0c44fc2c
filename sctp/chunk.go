package sctp

import "time"

// unlimitedRetransmissions is the PR-SCTP sentinel meaning "no limit" for
// MaxRetransmissions: the maximum representable uint32. (MaxLifetime uses a
// non-positive duration for "no limit" instead.)
const unlimitedRetransmissions = ^uint32(0)

// Chunk is a DATA chunk: one MTU-sized fragment of an application message.
//
// TSN is assigned at send time (not at enqueue time) by the send loop,
// unless the chunk arrives already carrying one via a retransmit path. The
// zero value of TSN is not itself a valid "unassigned" sentinel since TSN 0
// is reachable after wraparound; tsnAssigned tracks assignment explicitly.
type Chunk struct {
	TSN      TSN
	StreamID uint16
	// StreamSeq is the per-stream ordered sequence number. Meaningless
	// (and left at zero) for unordered chunks.
	StreamSeq StreamSeq

	Unordered bool
	Beginning bool
	Ending    bool

	PayloadProtocolID uint32
	UserData          []byte

	CreatedAt  time.Time
	LastSentAt time.Time
	SendCount  uint32

	// MaxLifetime is the PR-SCTP lifetime limit. A non-positive value means
	// unlimited.
	MaxLifetime time.Duration
	// MaxRetransmissions is the PR-SCTP retransmission-count limit.
	// unlimitedRetransmissions means unlimited.
	MaxRetransmissions uint32

	tsnAssigned bool
}

// messageKey identifies all fragments of one application message: the
// (stream, stream-seq) pair RFC 3758 groups fragments by for abandonment.
// Unordered messages have no meaningful stream-seq grouping key at this
// layer; PR-SCTP §4.G's fragment-group abandonment only applies to ordered
// messages in this implementation, matching RFC 3758 A3's restriction to
// "ordered message" fragments.
type messageKey struct {
	streamID  uint16
	streamSeq StreamSeq
}

func (c *Chunk) key() messageKey {
	return messageKey{streamID: c.StreamID, streamSeq: c.StreamSeq}
}

// lifetimeExpired reports whether the chunk has outlived MaxLifetime as of now.
func (c *Chunk) lifetimeExpired(now time.Time) bool {
	return c.MaxLifetime > 0 && now.Sub(c.CreatedAt) > c.MaxLifetime
}

// retransmissionsExhausted reports whether SendCount has exceeded
// MaxRetransmissions. SendCount starts at 1 on first transmission, so a
// MaxRetransmissions of N is exhausted once the chunk has been
// retransmitted N times; with 0, it is exhausted as soon as it has been
// sent once.
func (c *Chunk) retransmissionsExhausted() bool {
	return c.MaxRetransmissions != unlimitedRetransmissions && c.SendCount > c.MaxRetransmissions
}

// ForwardTSN is the record emitted when the PR-SCTP engine advances the
// peer's cumulative ack point past locally-abandoned chunks (RFC 3758 §3.2).
type ForwardTSN struct {
	NewCumulativeTSN TSN
	// StreamSeqs maps stream ID to the highest abandoned ordered stream-seq
	// for that stream, so the receiver can resynchronise reassembly.
	StreamSeqs map[uint16]StreamSeq
}

// wireLen estimates the serialized size of a FORWARD-TSN chunk: a 4-byte
// header-ish prefix (new cumulative TSN) plus 4 bytes per stream entry,
// mirroring the RFC 3758 §3.2 FORWARD TSN chunk layout (stream id + stream
// seq pairs). Used only to decide whether the chunk fits in MTU (§4.B).
func (f *ForwardTSN) wireLen() int {
	return 4 + 4*len(f.StreamSeqs)
}
