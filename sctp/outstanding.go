package sctp

import "sort"

// outstanding holds component D's three chunk tables plus the per-stream
// sequence counters. A TSN lives in exactly one of unconfirmed, abandoned,
// or neither (queued / gone) at any time — spec.md invariant 2.
type outstanding struct {
	// unconfirmed maps TSN to the chunk sent but not yet cumulatively
	// acked.
	unconfirmed map[TSN]*Chunk
	// missing holds TSNs flagged by a peer gap report for immediate
	// retransmission. The bool value is unused; presence is the signal.
	missing map[TSN]bool
	// abandoned maps TSN to a chunk PR-SCTP gave up on, still held here
	// until advancedPeerAckPoint surpasses it.
	abandoned map[TSN]*Chunk
	// streamSeqnums maps stream ID to the last stream-seq assigned to an
	// ordered message on that stream.
	streamSeqnums map[uint16]StreamSeq

	outstandingBytes int
}

func newOutstanding() outstanding {
	return outstanding{
		unconfirmed:   make(map[TSN]*Chunk),
		missing:       make(map[TSN]bool),
		abandoned:     make(map[TSN]*Chunk),
		streamSeqnums: make(map[uint16]StreamSeq),
	}
}

func (o *outstanding) insertUnconfirmed(c *Chunk) {
	o.unconfirmed[c.TSN] = c
	o.outstandingBytes += len(c.UserData)
}

func (o *outstanding) removeUnconfirmed(tsn TSN) {
	if c, ok := o.unconfirmed[tsn]; ok {
		o.outstandingBytes -= len(c.UserData)
		delete(o.unconfirmed, tsn)
	}
}

// nextStreamSeq allocates the next ordered sequence number for stream id,
// creating the counter at 0 on first use (spec.md §4.C step 1, invariant 6).
func (o *outstanding) nextStreamSeq(streamID uint16) StreamSeq {
	seq, ok := o.streamSeqnums[streamID]
	if !ok {
		o.streamSeqnums[streamID] = 0
		return 0
	}
	seq++ // 16-bit field wraps naturally on overflow.
	o.streamSeqnums[streamID] = seq
	return seq
}

// missingInOrder returns the TSNs currently marked missing, sorted by
// serial-number distance ascending from ref (normally cumulative_ack_tsn),
// satisfying §4.H priority-1's "iterate missing in sequence-arithmetic
// order" requirement.
func (o *outstanding) missingInOrder(ref TSN) []TSN {
	tsns := make([]TSN, 0, len(o.missing))
	for tsn := range o.missing {
		tsns = append(tsns, tsn)
	}
	sort.Slice(tsns, func(i, j int) bool {
		return Distance(ref, tsns[i]) < Distance(ref, tsns[j]) ||
			(Distance(ref, tsns[i]) == Distance(ref, tsns[j]) && IsNewer(tsns[j], tsns[i]))
	})
	return tsns
}

// removeTSN removes tsn from unconfirmed, missing, and abandoned,
// reporting whether it was present in any of them. The caller (Sender,
// which owns the logger) logs a warning when found reports false, per
// spec.md §4.D.
func (o *outstanding) removeTSN(tsn TSN) (found bool) {
	_, inUnconfirmed := o.unconfirmed[tsn]
	_, inAbandoned := o.abandoned[tsn]
	_, inMissing := o.missing[tsn]
	found = inUnconfirmed || inAbandoned || inMissing
	o.removeUnconfirmed(tsn)
	delete(o.missing, tsn)
	delete(o.abandoned, tsn)
	return found
}
