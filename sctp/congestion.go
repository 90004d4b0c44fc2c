package sctp

// congestion holds component E's scalar state: the congestion window,
// slow-start threshold, and receiver window, plus the bookkeeping needed
// to compute rwnd from the peer's advertised arwnd.
type congestion struct {
	cwnd     uint32
	ssthresh uint32
	rwnd     uint32

	// initialRemoteARWND is the value captured at construction or via
	// SetReceiverWindow; it seeds ssthresh and is otherwise inert.
	initialRemoteARWND uint32
}

// initCongestion sets up cwnd/ssthresh per RFC 4960 §7.2.1: cwnd starts at
// min(4*MTU, max(2*MTU, 4380)); ssthresh starts at the peer's advertised
// receive window.
func initCongestion(mtu int, cwndFactor, initialARWND uint32) congestion {
	m := uint32(mtu)
	cwnd := min4MTUmax2MTU(m, cwndFactor)
	return congestion{
		cwnd:               cwnd,
		ssthresh:           initialARWND,
		rwnd:               initialARWND,
		initialRemoteARWND: initialARWND,
	}
}

func min4MTUmax2MTU(mtu, cwndFactor uint32) uint32 {
	lower := 2 * mtu
	if cwndFactor > lower {
		lower = cwndFactor
	}
	upper := 4 * mtu
	if lower < upper {
		return lower
	}
	return upper
}

// setReceiverWindow updates rwnd from a SACK's advertised arwnd and the
// current outstanding byte count: rwnd = max(0, arwnd - outstandingBytes).
func (cc *congestion) setReceiverWindow(arwnd uint32, outstandingBytes int) {
	if int64(arwnd) <= int64(outstandingBytes) {
		cc.rwnd = 0
		return
	}
	cc.rwnd = arwnd - uint32(outstandingBytes)
}

// onCumulativeAck applies the slow-start/congestion-avoidance update of
// §4.E to a SACK that cumulatively advanced and whose acked chunk was not
// abandoned. lastAckedSize is the payload size of the chunk that advanced
// the cumulative ack point; mtu bounds the slow-start increment.
func (cc *congestion) onCumulativeAck(lastAckedSize, mtu, outstandingBytes uint32) {
	fullyUtilised := cc.cwnd <= outstandingBytes
	if cc.cwnd < cc.ssthresh {
		// Slow start.
		if fullyUtilised {
			inc := lastAckedSize
			if inc > mtu {
				inc = mtu
			}
			cc.cwnd += inc
		}
	} else {
		// Congestion avoidance.
		if fullyUtilised {
			cc.cwnd += mtu
		}
	}
}

// onT3Retransmit applies the T3-timeout congestion collapse of §4.E:
// ssthresh = max(cwnd/2, 4*MTU); cwnd = MTU (never below one MTU, per
// invariant 5).
func (cc *congestion) onT3Retransmit(mtu uint32) {
	half := cc.cwnd / 2
	floor := 4 * mtu
	if half > floor {
		cc.ssthresh = half
	} else {
		cc.ssthresh = floor
	}
	cc.cwnd = mtu
}
