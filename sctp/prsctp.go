package sctp

import (
	"log/slog"
	"time"
)

// chunkAbandonable reports whether c meets the PR-SCTP abandonment test of
// spec.md §4.G: a finite lifetime exceeded, or a finite retransmission
// budget exhausted.
func (s *Sender) chunkAbandonable(c *Chunk, now timeNow) bool {
	return c.lifetimeExpired(now.t) || c.retransmissionsExhausted()
}

// abandonChunk moves c from unconfirmed to abandoned and cascades the
// abandonment to the rest of its message, per RFC 3758 A3 (spec.md §4.G).
// Calling this while PR-SCTP was not negotiated is a programming error.
//
// Must be called with s.mu held.
func (s *Sender) abandonChunk(c *Chunk) error {
	if !s.prsctp {
		return newInvariantError("abandonChunk called without PR-SCTP negotiated")
	}
	s.abandonChunkLocked(c)
	return nil
}

// abandonChunkLocked does the actual move without the PR-SCTP-enabled
// check, so advancePeerAckPointLocked (which already checked PR-SCTP is
// on before doing anything) can call it directly.
func (s *Sender) abandonChunkLocked(c *Chunk) {
	// Store the fragment under its own TSN key, not the triggering
	// chunk's — spec.md §9 open question 1 calls out the source's
	// same-value-under-every-key bug as likely unintentional; this
	// mirrors the corrected behaviour the spec calls for.
	s.out.removeUnconfirmed(c.TSN)
	delete(s.out.missing, c.TSN)
	s.out.abandoned[c.TSN] = c

	if c.Unordered {
		return // RFC 3758 A3 grouping only applies to ordered messages.
	}
	key := c.key()
	for tsn, other := range s.out.unconfirmed {
		if tsn == c.TSN || other.key() != key {
			continue
		}
		s.out.removeUnconfirmed(tsn)
		delete(s.out.missing, tsn)
		s.out.abandoned[tsn] = other
	}
	dropped := s.queue.dropContiguousHeadOfMessage(key)
	if len(dropped) > 0 {
		s.trace("prsctp:dropped-queued-fragments", slog.Int("count", len(dropped)))
	}
}

// advancePeerAckPoint implements spec.md §4.G's three-step refresh:
// abandon any newly-eligible unconfirmed chunks, walk advancedPeerAckPoint
// forward over contiguous abandoned TSNs, then — subject to duplicate
// suppression — emit a FORWARD-TSN and drop abandoned entries the new
// cumulative point has surpassed.
//
// Must be called with s.mu held. No-op if PR-SCTP was not negotiated.
func (s *Sender) advancePeerAckPointLocked(now timeNow) {
	if !s.prsctp {
		return
	}
	for _, c := range s.out.unconfirmed {
		if s.chunkAbandonable(c, now) {
			s.abandonChunkLocked(c)
		}
	}

	for s.out.abandoned[s.advancedPeerAckPoint+1] != nil {
		s.advancedPeerAckPoint++
	}

	acked := s.initialTSN
	if s.gotFirstSack {
		acked = s.cumulativeAckTSN
	}
	if !IsNewer(acked, s.advancedPeerAckPoint) {
		return
	}

	if !s.shouldEmitForwardTSN(now) {
		return
	}

	fwd := s.buildForwardTSN()
	s.lastSentForwardTSN = s.advancedPeerAckPoint
	s.lastSentForwardTSNTime = now.t
	s.haveLastSentForwardTSN = true

	for tsn := range s.out.abandoned {
		if IsNewerOrEqual(tsn, s.advancedPeerAckPoint) {
			delete(s.out.abandoned, tsn)
			delete(s.out.missing, tsn)
		}
	}

	if s.forwardTSNFn != nil {
		s.mu.Unlock()
		s.forwardTSNFn(fwd)
		s.mu.Lock()
	}
}

// shouldEmitForwardTSN implements §4.G's duplicate suppression: emit
// unless the last emission was for the same value and less than one RTO
// ago.
func (s *Sender) shouldEmitForwardTSN(now timeNow) bool {
	if !s.haveLastSentForwardTSN {
		return true
	}
	if s.lastSentForwardTSN != s.advancedPeerAckPoint {
		return true
	}
	return now.t.Sub(s.lastSentForwardTSNTime) >= s.rto.current()
}

// buildForwardTSN assembles the FORWARD-TSN record: the new cumulative
// TSN and, for every ordered abandoned chunk at or below it, the highest
// abandoned stream-seq per stream (spec.md §4.B).
//
// If the serialized chunk would exceed MTU, the lowest-priority per-stream
// hints are dropped until it fits, per RFC 3758 C4 — spec.md §9 open
// question 2 prefers this over the source's emit-oversized-anyway
// behaviour. NewCumulativeTSN itself is never affected: every chunk up to
// advancedPeerAckPoint is already confirmed abandoned, so the cumulative
// advance stays valid even when some streams' resync hints are dropped.
func (s *Sender) buildForwardTSN() ForwardTSN {
	fwd := ForwardTSN{NewCumulativeTSN: s.advancedPeerAckPoint, StreamSeqs: map[uint16]StreamSeq{}}
	for tsn, c := range s.out.abandoned {
		if c.Unordered || IsNewer(s.advancedPeerAckPoint, tsn) {
			continue
		}
		if cur, ok := fwd.StreamSeqs[c.StreamID]; !ok || isNewerSeq(cur, c.StreamSeq) {
			fwd.StreamSeqs[c.StreamID] = c.StreamSeq
		}
	}
	if fwd.wireLen() > s.mtu {
		s.logerr("prsctp:forward-tsn-oversized", slog.Int("wirelen", fwd.wireLen()), slog.Int("mtu", s.mtu))
		s.lowerForwardTSNToFit(&fwd)
	}
	return fwd
}

// lowerForwardTSNToFit drops the highest (most recent) per-stream
// stream-seq hints, one at a time, until the chunk's serialized size fits
// in MTU.
func (s *Sender) lowerForwardTSNToFit(fwd *ForwardTSN) {
	for fwd.wireLen() > s.mtu && len(fwd.StreamSeqs) > 0 {
		var dropStream uint16
		var dropSeq StreamSeq = ^StreamSeq(0)
		found := false
		for stream, seq := range fwd.StreamSeqs {
			if !found || isNewerSeq(dropSeq, seq) {
				dropStream, dropSeq, found = stream, seq, true
			}
		}
		delete(fwd.StreamSeqs, dropStream)
	}
}

// timeNow wraps the single timestamp sampled at the start of a send-loop
// tick or SACK-handler call, so every component that needs "now" during
// that call uses the one sampled value rather than re-reading the clock.
type timeNow struct{ t time.Time }
