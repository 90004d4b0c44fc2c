package sctp

// sendQueue is the FIFO of DATA chunks awaiting first transmission
// (component C). It is a plain slice-backed queue: fragments are appended
// at submission and popped from the head by the send loop, mirroring the
// teacher's sentlist's slice-of-structs style (tcp/txqueue.go) rather than
// the byte-ring-buffer ringTx uses — unlike TCP's single contiguous byte
// stream, SCTP messages are discrete chunk objects, so a slice of *Chunk
// is the natural container; no ring indexing is needed.
type sendQueue struct {
	chunks []*Chunk
	// bufferedBytes is the running sum of UserData length across chunks,
	// kept incrementally so buffered_amount is O(1).
	bufferedBytes int
}

func (q *sendQueue) pushAll(chunks []*Chunk) {
	for _, c := range chunks {
		q.bufferedBytes += len(c.UserData)
	}
	q.chunks = append(q.chunks, chunks...)
}

func (q *sendQueue) empty() bool { return len(q.chunks) == 0 }

// peekFront returns the first chunk without removing it, or nil if empty.
func (q *sendQueue) peekFront() *Chunk {
	if len(q.chunks) == 0 {
		return nil
	}
	return q.chunks[0]
}

// popFront removes and returns the first chunk, or nil if empty.
func (q *sendQueue) popFront() *Chunk {
	c := q.peekFront()
	if c == nil {
		return nil
	}
	q.chunks = q.chunks[1:]
	q.bufferedBytes -= len(c.UserData)
	return c
}

// dropContiguousHeadOfMessage removes fragments of the given (stream,
// stream-seq) message from the head of the queue, stopping at the first
// fragment that does not match — spec.md §4.G step 3: "Drop all still-
// queued fragments of the same (stream_id, stream_seq) from send_queue by
// peeking-and-popping contiguous matches from its head." Fragments of one
// message are always contiguous in the queue (they are enqueued together,
// atomically, by send_data), so this never needs to scan past the head.
func (q *sendQueue) dropContiguousHeadOfMessage(key messageKey) (dropped []*Chunk) {
	for {
		front := q.peekFront()
		if front == nil || front.key() != key {
			break
		}
		dropped = append(dropped, q.popFront())
	}
	return dropped
}

func (q *sendQueue) bufferedAmount() int { return q.bufferedBytes }

// fragment splits userData into contiguous payloads no larger than mtu,
// per spec.md §4.C. The last fragment may be shorter; a non-empty input
// never produces a zero-length fragment.
func fragment(userData []byte, mtu int) [][]byte {
	if len(userData) == 0 {
		return nil
	}
	n := (len(userData) + mtu - 1) / mtu
	frags := make([][]byte, 0, n)
	for off := 0; off < len(userData); off += mtu {
		end := off + mtu
		if end > len(userData) {
			end = len(userData)
		}
		frags = append(frags, userData[off:end])
	}
	return frags
}
