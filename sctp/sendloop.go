package sctp

import (
	"log/slog"
	"time"

	"github.com/soypat/sctp/internal"
)

// loop is the send-loop worker body, spawned once by StartSending. It runs
// until Close is called, per spec.md §4.H and §5.
func (s *Sender) loop() {
	defer close(s.closed)
	for {
		s.tick()

		select {
		case <-s.closing:
			return
		default:
		}

		wait := s.waitDuration()
		select {
		case <-s.wake:
		case <-time.After(wait):
		case <-s.closing:
			return
		}
	}
}

// tick runs one iteration of the send loop: §4.H steps 1-6. now is
// sampled once at the top, per spec.md §4.H's "now sampled once".
func (s *Sender) tick() {
	now := timeNow{t: s.now()}

	s.mu.Lock()
	budget := s.burstBudgetLocked()

	if s.prsctp {
		s.advancePeerAckPointLocked(now)
	}

	// The three priorities together never hand off more than the tick's
	// starting budget, so a buffer reused across ticks never needs to grow.
	internal.SliceReuse(&s.sendBuf, budget)
	toSend := s.sendBuf
	budget, toSend = s.sendMissingLocked(now, budget, toSend)
	budget, toSend = s.sendExpiredLocked(now, budget, toSend)
	_, toSend = s.sendNewLocked(now, budget, toSend)
	s.sendBuf = toSend

	s.mu.Unlock()

	for _, c := range toSend {
		s.sendFn(c)
	}

	// Reset the wake-up signal before reporting the burst as complete.
	select {
	case <-s.wake:
	default:
	}
	if s.burstCompleteFn != nil {
		s.burstCompleteFn()
	}
}

// burstBudgetLocked computes the per-tick burst budget per §4.H step 1.
// Must be called with s.mu held.
func (s *Sender) burstBudgetLocked() int {
	if s.inRetransmitMode || uint32(s.out.outstandingBytes) > s.cc.cwnd || s.cc.rwnd == 0 {
		return 1
	}
	return s.maxBurst
}

// sendMissingLocked implements §4.H priority 1: gap-reported misses, in
// sequence-arithmetic order. Must be called with s.mu held.
func (s *Sender) sendMissingLocked(now timeNow, budget int, toSend []Chunk) (int, []Chunk) {
	for _, tsn := range s.out.missingInOrder(s.cumulativeAckTSN) {
		if budget <= 0 {
			break
		}
		c, ok := s.out.unconfirmed[tsn]
		if !ok {
			delete(s.out.missing, tsn)
			continue
		}
		c.LastSentAt = now.t
		c.SendCount++
		toSend = append(toSend, *c)
		budget--
	}
	return budget, toSend
}

// sendExpiredLocked implements §4.H priority 2: RTO-expired unconfirmed
// chunks, collapsing congestion state on the first retransmission of the
// tick. Must be called with s.mu held.
func (s *Sender) sendExpiredLocked(now timeNow, budget int, toSend []Chunk) (int, []Chunk) {
	timeout := s.rto.current() // equals rtoInitial pre-measurement; see rtoEstimator.
	firstThisTick := true
	for tsn, c := range s.out.unconfirmed {
		if budget <= 0 {
			break
		}
		if s.out.missing[tsn] {
			continue // already handled (or about to be) by priority 1.
		}
		if now.t.Sub(c.LastSentAt) <= timeout {
			continue
		}
		c.LastSentAt = now.t
		c.SendCount++
		toSend = append(toSend, *c)
		budget--

		if firstThisTick && !s.inRetransmitMode {
			s.cc.onT3Retransmit(uint32(s.mtu))
			s.inRetransmitMode = true
			if s.rto.hasRTT {
				s.rto.backoff()
			}
			s.logerr("sendloop:t3-retransmit", slog.Uint64("tsn", uint64(tsn)))
		}
		firstThisTick = false
	}
	return budget, toSend
}

// sendNewLocked implements §4.H priority 3: dequeue new chunks from
// send_queue while budget remains, assigning TSNs in strict send order.
// Must be called with s.mu held.
func (s *Sender) sendNewLocked(now timeNow, budget int, toSend []Chunk) (int, []Chunk) {
	for budget > 0 {
		c := s.queue.peekFront()
		if c == nil {
			break
		}
		if s.prsctp && s.chunkAbandonable(c, now) {
			s.queue.popFront()
			s.trace("sendloop:skip-abandoned-queued")
			continue
		}
		s.queue.popFront()
		if !c.tsnAssigned {
			c.TSN = s.nextTSN
			c.tsnAssigned = true
			s.nextTSN++
		}
		c.LastSentAt = now.t
		c.SendCount = 1
		s.out.insertUnconfirmed(c)
		toSend = append(toSend, *c)
		budget--
	}
	return budget, toSend
}

// waitDuration computes the send loop's end-of-tick wait, per §4.H.
func (s *Sender) waitDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	rtoOrInitial := s.rto.current()

	workRemains := !s.queue.empty() || len(s.out.missing) > 0
	if workRemains {
		if s.cc.rwnd > 0 && s.cc.cwnd > uint32(s.out.outstandingBytes) {
			return s.burstPeriod
		}
		return rtoOrInitial
	}
	if len(s.out.unconfirmed) > 0 {
		return rtoOrInitial
	}
	return s.rto.initialValue()
}
