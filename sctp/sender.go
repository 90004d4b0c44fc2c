// Package sctp implements the reliable data-sender subsystem of an SCTP
// association endpoint: message fragmentation and sequencing, the
// outstanding-chunk ledger, congestion/flow control, RTT/RTO estimation,
// the PR-SCTP partial-reliability engine, and the send loop that
// orchestrates all four (RFC 4960 §6/§7, RFC 3758).
//
// Chunk parsing, wire framing, and the SCTP control-chunk handshake
// (INIT/COOKIE/HEARTBEAT/ABORT) are the caller's concern: Sender only
// emits already-built Chunk and ForwardTSN values through callbacks.
package sctp

import (
	"sync"
	"time"
)

// Sender is a reliable SCTP data-sender for one association. The zero
// value is not usable; construct with NewSender.
//
// All mutable state is guarded by a single mutex, held for the full
// duration of a send-loop tick, a HandleSack call, or a SendData enqueue,
// per spec.md §5. Callbacks (Send, ForwardTSNSend, BurstComplete) are
// invoked with the lock released.
type Sender struct {
	mu sync.Mutex
	logger

	sendFn          func(Chunk)
	forwardTSNFn    func(ForwardTSN)
	burstCompleteFn func()

	mtu         int
	maxBurst    int
	burstPeriod time.Duration
	prsctp      bool
	now         func() time.Time

	nextTSN    TSN
	initialTSN TSN

	queue sendQueue
	out   outstanding
	cc    congestion
	rto   rtoEstimator

	// sendBuf is the send loop's per-tick output buffer, reused across
	// ticks via internal.SliceReuse to avoid a fresh allocation every tick.
	sendBuf []Chunk

	gotFirstSack         bool
	cumulativeAckTSN     TSN
	advancedPeerAckPoint TSN
	inRetransmitMode     bool

	haveLastSentForwardTSN bool
	lastSentForwardTSN     TSN
	lastSentForwardTSNTime time.Time

	wake      chan struct{}
	closing   chan struct{}
	closed    chan struct{}
	started   bool
	closeOnce sync.Once
}

// NewSender constructs a Sender from cfg. Zero-value fields in cfg fall
// back to RFC defaults (see Config). Returns an error if cfg.Send is nil
// or the RTO bounds are inconsistent.
func NewSender(cfg Config) (*Sender, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Sender{
		logger:          logger{log: cfg.Logger},
		sendFn:          cfg.Send,
		forwardTSNFn:    cfg.ForwardTSNSend,
		burstCompleteFn: cfg.BurstComplete,
		mtu:             cfg.MTU,
		maxBurst:        cfg.MaxBurst,
		burstPeriod:     cfg.BurstPeriod,
		prsctp:          cfg.PRSCTP,
		now:             time.Now,
		nextTSN:         cfg.InitialTSN,
		initialTSN:      cfg.InitialTSN,
		queue:                sendQueue{},
		out:                  newOutstanding(),
		cc:                   initCongestion(cfg.MTU, cfg.CwndFactor, cfg.InitialRemoteARWND),
		rto:                  newRTOEstimator(cfg.RTOInitial, cfg.RTOMin, cfg.RTOMax, cfg.RTOAlpha, cfg.RTOBeta),
		advancedPeerAckPoint: cfg.InitialTSN,
		wake:                 make(chan struct{}, 1),
		closing:              make(chan struct{}),
		closed:               make(chan struct{}),
	}
	return s, nil
}

// signal wakes a pending send-loop wait at most once; extra signals
// coalesce into the single buffered slot, matching spec.md §5's
// edge-triggered-with-timeout wake-up contract.
func (s *Sender) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// SetReceiverWindow updates the stored initial-arwnd reference. It does
// not directly alter the current rwnd, which only changes on a SACK.
func (s *Sender) SetReceiverWindow(arwnd uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cc.initialRemoteARWND = arwnd
}

// BufferedAmount returns the bytes currently queued but not yet sent.
func (s *Sender) BufferedAmount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.bufferedAmount()
}

// NextTSN returns the TSN that will be assigned to the next new chunk.
func (s *Sender) NextTSN() TSN {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextTSN
}

// Stats is a read-only snapshot of Sender's numeric state, e.g. for an
// association to log or export; see SPEC_FULL.md §3.
type Stats struct {
	Cwnd             uint32
	Ssthresh         uint32
	Rwnd             uint32
	RTO              time.Duration
	SRTT             time.Duration
	OutstandingBytes int
	MissingCount     int
	AbandonedCount   int
}

// Stats returns a snapshot of the sender's current congestion, flow
// control, and RTO state.
func (s *Sender) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Cwnd:             s.cc.cwnd,
		Ssthresh:         s.cc.ssthresh,
		Rwnd:             s.cc.rwnd,
		RTO:              s.rto.current(),
		SRTT:             s.rto.srtt,
		OutstandingBytes: s.out.outstandingBytes,
		MissingCount:     len(s.out.missing),
		AbandonedCount:   len(s.out.abandoned),
	}
}

// StartSending spawns the send-loop worker. Idempotent: subsequent calls
// are no-ops.
func (s *Sender) StartSending() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	go s.loop()
}

// Close requests the send-loop worker to shut down. Idempotent. The loop
// finishes its current iteration and exits; no in-flight chunks are
// destroyed (draining or abandoning outstanding chunks is layered above,
// per spec.md §5).
func (s *Sender) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
	s.signal()
}

// Done returns a channel closed once the send-loop worker has exited
// after a Close call.
func (s *Sender) Done() <-chan struct{} {
	return s.closed
}
