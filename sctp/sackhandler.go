package sctp

import "log/slog"

// HandleSack processes a peer SACK, per spec.md §4.I. It is called from
// the peer-input path, single-threaded with the send loop under s.mu (see
// spec.md §5).
func (s *Sender) HandleSack(sack SackChunk) {
	now := timeNow{t: s.now()}

	s.mu.Lock()
	s.inRetransmitMode = false

	maxDistance := Distance(s.cumulativeAckTSN, s.nextTSN)

	var updateCwnd = true
	var lastAckedSize uint32
	if c, ok := s.out.unconfirmed[sack.CumulativeTSNAck]; ok {
		if c.SendCount == 1 {
			s.rto.update(now.t.Sub(c.LastSentAt))
		}
		lastAckedSize = uint32(len(c.UserData))
	}
	if _, ok := s.out.abandoned[sack.CumulativeTSNAck]; ok {
		updateCwnd = false
	}

	advanced := false
	skipGaps := false
	if !s.gotFirstSack {
		if IsNewerOrEqual(s.initialTSN, sack.CumulativeTSNAck) {
			// Seed one before initial_tsn, not initial_tsn itself: the walk
			// below starts at cumulativeAckTSN+1, so this is what makes it
			// visit TSN initial_tsn exactly once instead of skipping it.
			s.cumulativeAckTSN = s.initialTSN - 1
			s.gotFirstSack = true
			s.removeAckedUnconfirmedLocked(sack.CumulativeTSNAck)
			advanced = true
		}
	} else {
		stale := !IsNewerOrEqual(sack.CumulativeTSNAck, s.cumulativeAckTSN)
		tooDistant := Distance(s.cumulativeAckTSN, sack.CumulativeTSNAck) > maxDistance
		if stale || tooDistant {
			skipGaps = true
			s.logerr("sack:rejected",
				slog.Uint64("cum_ack", uint64(sack.CumulativeTSNAck)),
				slog.Uint64("our_cum_ack", uint64(s.cumulativeAckTSN)))
		} else {
			s.removeAckedUnconfirmedLocked(sack.CumulativeTSNAck)
			advanced = true
		}
	}

	if !skipGaps {
		s.processGapBlocks(sack, maxDistance)
	}

	s.cc.setReceiverWindow(sack.ARWND, s.out.outstandingBytes)
	if advanced && updateCwnd {
		s.cc.onCumulativeAck(lastAckedSize, uint32(s.mtu), uint32(s.out.outstandingBytes))
	}

	if s.prsctp {
		if IsNewer(s.advancedPeerAckPoint, sack.CumulativeTSNAck) {
			s.advancedPeerAckPoint = sack.CumulativeTSNAck
		}
		s.advancePeerAckPointLocked(now)
	}
	s.mu.Unlock()

	s.signal()
}

// removeAckedUnconfirmedLocked implements spec.md §4.D: walk TSNs from
// cumulativeAckTSN (exclusive) up to sackTSN inclusive, removing each from
// unconfirmed/missing/abandoned, then set cumulativeAckTSN = sackTSN.
// Must be called with s.mu held.
func (s *Sender) removeAckedUnconfirmedLocked(sackTSN TSN) {
	cumAck := s.cumulativeAckTSN
	if IsNewer(cumAck, sackTSN) {
		bound := len(s.out.unconfirmed) + 1
		tsn := cumAck
		for i := 0; i < bound; i++ {
			tsn++
			if !s.out.removeTSN(tsn) {
				s.logerr("sack:acked-tsn-untracked", slog.Uint64("tsn", uint64(tsn)))
			}
			if tsn == sackTSN {
				break
			}
		}
	}
	s.cumulativeAckTSN = sackTSN
}

// processGapBlocks implements spec.md §4.I step 6: walk gap-ack-blocks in
// order, sanity-checking each against the previous block and maxDistance,
// and mark every TSN strictly between the previous block's end and this
// block's start as missing, provided it is tracked in unconfirmed.
func (s *Sender) processGapBlocks(sack SackChunk, maxDistance uint32) {
	lastGoodEnd := TSN(0)
	haveLastGoodEnd := false
	for _, blk := range sack.GapAckBlocks {
		blockStart := AddTSN(sack.CumulativeTSNAck, uint32(blk.Start))
		blockEnd := AddTSN(sack.CumulativeTSNAck, uint32(blk.End))
		if Distance(s.cumulativeAckTSN, blockStart) > maxDistance {
			s.logerr("sack:gap-block-spurious", slog.Uint64("start", uint64(blockStart)))
			break
		}
		if haveLastGoodEnd && !IsNewer(lastGoodEnd, blockStart) {
			s.logerr("sack:gap-block-inconsistent",
				slog.Uint64("prev_end", uint64(lastGoodEnd)), slog.Uint64("start", uint64(blockStart)))
			break
		}
		start := lastGoodEnd
		if !haveLastGoodEnd {
			start = sack.CumulativeTSNAck
		}
		for tsn := start + 1; tsn != blockStart; tsn++ {
			if s.out.missing[tsn] {
				continue
			}
			if _, ok := s.out.unconfirmed[tsn]; ok {
				s.out.missing[tsn] = true
			} else {
				s.logerr("sack:missing-tsn-not-outstanding", slog.Uint64("tsn", uint64(tsn)))
			}
		}
		lastGoodEnd = blockEnd
		haveLastGoodEnd = true
	}
}
