package sctp

import (
	"testing"
	"time"
)

func newTestSenderPRSCTP(t *testing.T) *Sender {
	t.Helper()
	var sent []Chunk
	var fwds []ForwardTSN
	s, err := NewSender(Config{
		Send:           func(c Chunk) { sent = append(sent, c) },
		ForwardTSNSend: func(f ForwardTSN) { fwds = append(fwds, f) },
		PRSCTP:         true,
		MTU:            1300,
		InitialTSN:     1,
	})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	return s
}

func TestChunkAbandonableLifetime(t *testing.T) {
	now := time.Now()
	c := &Chunk{CreatedAt: now.Add(-2 * time.Second), MaxLifetime: time.Second}
	s := newTestSenderPRSCTP(t)
	if !s.chunkAbandonable(c, timeNow{t: now}) {
		t.Fatal("expired-lifetime chunk should be abandonable")
	}
}

func TestChunkAbandonableRetransmissions(t *testing.T) {
	c := &Chunk{SendCount: 5, MaxRetransmissions: 3}
	s := newTestSenderPRSCTP(t)
	if !s.chunkAbandonable(c, timeNow{t: time.Now()}) {
		t.Fatal("chunk past retransmission budget should be abandonable")
	}
}

func TestChunkNotAbandonableUnlimited(t *testing.T) {
	c := &Chunk{SendCount: 1000, MaxRetransmissions: UnlimitedRetransmissions}
	s := newTestSenderPRSCTP(t)
	if s.chunkAbandonable(c, timeNow{t: time.Now()}) {
		t.Fatal("unlimited-retransmission chunk must never be abandonable on that basis")
	}
}

func TestAbandonChunkRequiresPRSCTP(t *testing.T) {
	s, err := NewSender(Config{Send: func(Chunk) {}})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	c := &Chunk{TSN: 1}
	if err := s.abandonChunk(c); err == nil {
		t.Fatal("abandonChunk without PR-SCTP negotiated should error")
	}
}

func TestAbandonChunkCascadesOrderedMessage(t *testing.T) {
	s := newTestSenderPRSCTP(t)
	key := messageKey{streamID: 1, streamSeq: 7}
	c1 := &Chunk{TSN: 10, StreamID: 1, StreamSeq: 7, Beginning: true}
	c2 := &Chunk{TSN: 11, StreamID: 1, StreamSeq: 7, Ending: true}
	other := &Chunk{TSN: 12, StreamID: 2, StreamSeq: 1}
	s.out.insertUnconfirmed(c1)
	s.out.insertUnconfirmed(c2)
	s.out.insertUnconfirmed(other)

	s.abandonChunkLocked(c1)

	if _, ok := s.out.unconfirmed[10]; ok {
		t.Error("abandoned chunk should leave unconfirmed")
	}
	if _, ok := s.out.unconfirmed[11]; ok {
		t.Error("sibling fragment of the same message should cascade into abandoned")
	}
	if _, ok := s.out.unconfirmed[12]; !ok {
		t.Error("chunk from a different message must not be abandoned")
	}
	if s.out.abandoned[10] == nil || s.out.abandoned[11] == nil {
		t.Fatal("both fragments of the message should be in abandoned")
	}
	if _, ok := s.out.abandoned[12]; ok {
		t.Error("unrelated chunk must not be abandoned")
	}
	_ = key
}

func TestAbandonChunkUnorderedDoesNotCascade(t *testing.T) {
	s := newTestSenderPRSCTP(t)
	c1 := &Chunk{TSN: 20, StreamID: 1, Unordered: true}
	c2 := &Chunk{TSN: 21, StreamID: 1, Unordered: true}
	s.out.insertUnconfirmed(c1)
	s.out.insertUnconfirmed(c2)

	s.abandonChunkLocked(c1)

	if _, ok := s.out.unconfirmed[21]; !ok {
		t.Fatal("unordered sibling must not cascade-abandon")
	}
}

func TestAdvancePeerAckPointAbandonsExpiredAndEmitsForwardTSN(t *testing.T) {
	var fwds []ForwardTSN
	s, err := NewSender(Config{
		Send:           func(Chunk) {},
		ForwardTSNSend: func(f ForwardTSN) { fwds = append(fwds, f) },
		PRSCTP:         true,
		MTU:            1300,
		InitialTSN:     1,
	})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	s.gotFirstSack = true
	s.cumulativeAckTSN = 0
	s.advancedPeerAckPoint = 0

	now := time.Now()
	c := &Chunk{TSN: 1, StreamID: 1, StreamSeq: 3, Beginning: true, Ending: true,
		CreatedAt: now.Add(-time.Hour), MaxLifetime: time.Second}
	s.out.insertUnconfirmed(c)

	s.mu.Lock()
	s.advancePeerAckPointLocked(timeNow{t: now})
	s.mu.Unlock()

	if s.advancedPeerAckPoint != 1 {
		t.Fatalf("advancedPeerAckPoint = %v, want 1", s.advancedPeerAckPoint)
	}
	if len(fwds) != 1 {
		t.Fatalf("forward-tsn callback invoked %d times, want 1", len(fwds))
	}
	if fwds[0].NewCumulativeTSN != 1 {
		t.Fatalf("forward-tsn NewCumulativeTSN = %v, want 1", fwds[0].NewCumulativeTSN)
	}
	if fwds[0].StreamSeqs[1] != 3 {
		t.Fatalf("forward-tsn stream-seq for stream 1 = %v, want 3", fwds[0].StreamSeqs[1])
	}
}

func TestShouldEmitForwardTSNSuppressesDuplicate(t *testing.T) {
	s := newTestSenderPRSCTP(t)
	now := time.Now()
	s.rto = newRTOEstimator(3*time.Second, time.Second, 60*time.Second, 0.125, 0.25)

	if !s.shouldEmitForwardTSN(timeNow{t: now}) {
		t.Fatal("first emission should always be allowed")
	}
	s.haveLastSentForwardTSN = true
	s.lastSentForwardTSN = 5
	s.advancedPeerAckPoint = 5
	s.lastSentForwardTSNTime = now

	if s.shouldEmitForwardTSN(timeNow{t: now.Add(10 * time.Millisecond)}) {
		t.Fatal("duplicate emission within one RTO should be suppressed")
	}
	if !s.shouldEmitForwardTSN(timeNow{t: now.Add(4 * time.Second)}) {
		t.Fatal("emission after one RTO has elapsed should be allowed again")
	}

	s.advancedPeerAckPoint = 6
	if !s.shouldEmitForwardTSN(timeNow{t: now.Add(time.Millisecond)}) {
		t.Fatal("a new advancedPeerAckPoint value should never be suppressed")
	}
}

func TestBuildForwardTSNLowersToFitMTU(t *testing.T) {
	s := newTestSenderPRSCTP(t)
	s.mtu = 12 // header(4) + 2 stream entries(8) fits; 3 does not.
	s.advancedPeerAckPoint = 100

	for i, seq := range []struct {
		stream uint16
		seq    StreamSeq
	}{{1, 1}, {2, 1}, {3, 1}} {
		s.out.abandoned[TSN(10+i)] = &Chunk{TSN: TSN(10 + i), StreamID: seq.stream, StreamSeq: seq.seq}
	}

	fwd := s.buildForwardTSN()
	if fwd.wireLen() > s.mtu {
		t.Fatalf("wireLen %d exceeds mtu %d after lowering", fwd.wireLen(), s.mtu)
	}
	if len(fwd.StreamSeqs) > 2 {
		t.Fatalf("expected at most 2 stream entries to fit mtu %d, got %d", s.mtu, len(fwd.StreamSeqs))
	}
}
