package sctp

// GapAckBlock is a contiguous range of TSNs the peer has received, offset
// from CumulativeTSNAck, as carried in a SACK chunk (RFC 4960 §3.3.4).
type GapAckBlock struct {
	Start uint16
	End   uint16
}

// SackChunk is the decoded form of a peer SACK, the input to
// Sender.HandleSack. Construct one directly, or decode a wire-format SACK
// with sackparse.Decode.
type SackChunk struct {
	CumulativeTSNAck TSN
	ARWND            uint32
	GapAckBlocks     []GapAckBlock

	// Duplicates lists TSNs the peer reports as received more than once
	// (RFC 4960 §6.2). This sender never acts on it — the receiver owns
	// de-duplication — it is surfaced only for observability, per
	// SPEC_FULL.md §3.
	Duplicates []TSN
}
