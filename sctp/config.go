package sctp

import (
	"log/slog"
	"time"
)

// Defaults per RFC 4960 §6/§7 and RFC 3758, configurable via Config.
const (
	DefaultMTU         = 1300
	DefaultMaxBurst    = 4
	DefaultBurstPeriod = 50 * time.Millisecond
	DefaultRTOInitial  = 3 * time.Second
	DefaultRTOMin      = 1 * time.Second
	DefaultRTOMax      = 60 * time.Second
	DefaultRTOAlpha    = 0.125
	DefaultRTOBeta     = 0.25
	DefaultCwndFactor  = 4380
)

// Config configures a Sender at construction. Zero-value fields fall back
// to the RFC defaults above, mirroring the teacher's all-optional
// ConnConfig style.
type Config struct {
	// AssociationID identifies the owning association, surfaced only in
	// log attributes.
	AssociationID uint64

	// Send is invoked by the send loop for every chunk handed to the wire,
	// with no internal lock held. Required.
	Send func(Chunk)

	// ForwardTSNSend is invoked when the PR-SCTP engine emits a FORWARD-TSN.
	// May be nil if PR-SCTP support was not negotiated.
	ForwardTSNSend func(ForwardTSN)

	// BurstComplete, if non-nil, is invoked at the end of every send-loop
	// tick after the wake-up signal has been reset.
	BurstComplete func()

	MTU                int
	InitialTSN         TSN
	InitialRemoteARWND uint32

	// PRSCTP enables the partial-reliability engine (component G). Calling
	// any PR-SCTP-only operation while this is false is a programming
	// error (see InvariantError).
	PRSCTP bool

	MaxBurst    int
	BurstPeriod time.Duration
	RTOInitial  time.Duration
	RTOMin      time.Duration
	RTOMax      time.Duration
	RTOAlpha    float64
	RTOBeta     float64
	CwndFactor  uint32

	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.MTU <= 0 {
		c.MTU = DefaultMTU
	}
	if c.MaxBurst <= 0 {
		c.MaxBurst = DefaultMaxBurst
	}
	if c.BurstPeriod <= 0 {
		c.BurstPeriod = DefaultBurstPeriod
	}
	if c.RTOInitial <= 0 {
		c.RTOInitial = DefaultRTOInitial
	}
	if c.RTOMin <= 0 {
		c.RTOMin = DefaultRTOMin
	}
	if c.RTOMax <= 0 {
		c.RTOMax = DefaultRTOMax
	}
	if c.RTOAlpha <= 0 {
		c.RTOAlpha = DefaultRTOAlpha
	}
	if c.RTOBeta <= 0 {
		c.RTOBeta = DefaultRTOBeta
	}
	if c.CwndFactor <= 0 {
		c.CwndFactor = DefaultCwndFactor
	}
}

func (c *Config) validate() error {
	if c.Send == nil {
		return errZeroSendCallback
	}
	if c.MTU <= 0 {
		return errInvalidMTU
	}
	if !(c.RTOMin <= c.RTOInitial && c.RTOInitial <= c.RTOMax) {
		return errInvalidRTOBounds
	}
	return nil
}
