package sctp

import "time"

// UnlimitedRetransmissions is the PR-SCTP sentinel meaning "no
// retransmission-count limit" for SendData's maxRetransmissions argument.
const UnlimitedRetransmissions = unlimitedRetransmissions

// SendData accepts an application message, per spec.md §4.C. If ordered is
// true, all fragments share one allocated stream-seq. maxLifetime <= 0
// means "no PR-SCTP lifetime limit"; maxRetransmissions ==
// UnlimitedRetransmissions means "no PR-SCTP retransmission-count limit".
//
// Fragments are enqueued atomically with respect to other SendData calls;
// the send loop never observes interleaving at the fragment level
// (invariant 7). The send loop is signalled once enqueuing completes.
func (s *Sender) SendData(streamID uint16, ppid uint32, userData []byte, ordered bool, maxLifetime time.Duration, maxRetransmissions uint32) error {
	if len(userData) == 0 {
		return errEmptyUserData
	}

	s.mu.Lock()
	var seq StreamSeq
	if ordered {
		seq = s.out.nextStreamSeq(streamID)
	}
	frags := fragment(userData, s.mtu)
	now := s.now()
	chunks := make([]*Chunk, len(frags))
	for i, payload := range frags {
		chunks[i] = &Chunk{
			StreamID:           streamID,
			StreamSeq:          seq,
			Unordered:          !ordered,
			Beginning:          i == 0,
			Ending:             i == len(frags)-1,
			PayloadProtocolID:  ppid,
			UserData:           payload,
			CreatedAt:          now,
			MaxLifetime:        maxLifetime,
			MaxRetransmissions: maxRetransmissions,
		}
	}
	s.queue.pushAll(chunks)
	s.trace("send_data:enqueued")
	s.mu.Unlock()

	s.signal()
	return nil
}
