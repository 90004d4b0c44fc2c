package sctp

import "time"

// rtoEstimator holds component F's RTT/RTO state: smoothed RTT, RTT
// variation, and the current retransmission timeout, updated per Karn's
// rule (only from chunks with SendCount == 1).
type rtoEstimator struct {
	hasRTT bool
	srtt   time.Duration
	rttVar time.Duration
	rto    time.Duration

	// rtoInitial is the configured RTO_INITIAL constant, kept separate
	// from rto because the send loop's idle-wait branch (§4.H "Else:
	// rto_initial") always uses the configured constant, not whatever the
	// learned estimate has grown to.
	rtoInitial     time.Duration
	alpha, beta    float64
	rtoMin, rtoMax time.Duration
}

func newRTOEstimator(initial, min, max time.Duration, alpha, beta float64) rtoEstimator {
	return rtoEstimator{
		rto:        initial,
		rtoInitial: initial,
		alpha:      alpha,
		beta:       beta,
		rtoMin:     min,
		rtoMax:     max,
	}
}

// update applies a fresh RTT sample R per §4.F. Callers must only invoke
// this for a chunk with SendCount == 1 (Karn's rule): update is a no-op
// safety net if called with a non-positive sample, but the real gate is
// the caller checking SendCount before calling at all.
func (e *rtoEstimator) update(r time.Duration) {
	if r <= 0 {
		return
	}
	if !e.hasRTT {
		e.srtt = r
		e.rttVar = r / 2
		e.hasRTT = true
	} else {
		diff := e.srtt - r
		if diff < 0 {
			diff = -diff
		}
		e.rttVar = time.Duration((1-e.beta)*float64(e.rttVar) + e.beta*float64(diff))
		e.srtt = time.Duration((1-e.alpha)*float64(e.srtt) + e.alpha*float64(r))
	}
	e.rto = e.srtt + 4*e.rttVar
	e.clamp()
}

func (e *rtoEstimator) clamp() {
	if e.rto < e.rtoMin {
		e.rto = e.rtoMin
	} else if e.rto > e.rtoMax {
		e.rto = e.rtoMax
	}
}

// backoff doubles the RTO on a T3 timeout, per §4.E, only meaningful once
// an RTT has been measured (an un-measured RTO stays at its initial
// value until backed off from a real sample).
func (e *rtoEstimator) backoff() {
	if !e.hasRTT {
		return
	}
	e.rto *= 2
	e.clamp()
}

// current returns the RTO to use for timeout comparisons: the estimated
// RTO once a sample exists, otherwise the configured initial value is
// already what e.rto holds (set at construction), so this is just e.rto.
func (e *rtoEstimator) current() time.Duration { return e.rto }

// initialValue returns the configured RTO_INITIAL constant, used by the send
// loop's fully-idle wait branch.
func (e *rtoEstimator) initialValue() time.Duration { return e.rtoInitial }
