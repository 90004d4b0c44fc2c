// Package sackparse decodes wire-format SCTP SACK chunks (RFC 4960 §3.3.4)
// into the sctp.SackChunk record consumed by Sender.HandleSack.
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|   Type = 3    |Chunk  Flags   |      Chunk Length             |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                      Cumulative TSN Ack                      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|          Advertised Receiver Window Credit (a_rwnd)          |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	| Number of Gap Ack Blocks = N  | Number of Duplicate TSNs = X  |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|  Gap Ack Block #1 Start      |  Gap Ack Block #1 End          |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	/                                                               /
//	\                              ...                             \
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                       Duplicate TSN 1                        |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	/                                                               /
//	\                              ...                             \
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
package sackparse

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/soypat/sctp/sctp"
)

// SACK chunk type, per RFC 4960 §3.3.4.
const chunkTypeSack = 3

const (
	fixedHeaderLen = 16 // chunk header (4) + cum TSN ack (4) + a_rwnd (4) + counts (4)
	gapAckBlockLen = 4
	dupTSNLen      = 4
)

// Decode and unmarshal errors.
var (
	ErrRawTooSmall           = errors.New("sackparse: raw is smaller than the minimum SACK chunk length")
	ErrUnexpectedChunkType   = errors.New("sackparse: chunk type is not SACK")
	ErrNotEnoughData         = errors.New("sackparse: chunk length exceeds available data")
	ErrGapAckBlocksTruncated = errors.New("sackparse: gap ack blocks truncated")
	ErrDuplicatesTruncated   = errors.New("sackparse: duplicate TSN list truncated")
)

// Decode parses a wire-format SACK chunk (including its 4-byte chunk
// header) from raw and returns the decoded sctp.SackChunk.
//
// raw must contain at least the chunk's declared length; trailing bytes
// (padding, or subsequent chunks in the same packet) are ignored.
func Decode(raw []byte) (sctp.SackChunk, error) {
	var sack sctp.SackChunk
	if len(raw) < fixedHeaderLen {
		return sack, fmt.Errorf("%w: got %d bytes, need at least %d", ErrRawTooSmall, len(raw), fixedHeaderLen)
	}
	if raw[0] != chunkTypeSack {
		return sack, fmt.Errorf("%w: type %d", ErrUnexpectedChunkType, raw[0])
	}
	chunkLen := int(binary.BigEndian.Uint16(raw[2:]))
	if chunkLen < fixedHeaderLen || chunkLen > len(raw) {
		return sack, fmt.Errorf("%w: declared %d, have %d", ErrNotEnoughData, chunkLen, len(raw))
	}
	raw = raw[:chunkLen]

	sack.CumulativeTSNAck = sctp.TSN(binary.BigEndian.Uint32(raw[4:]))
	sack.ARWND = binary.BigEndian.Uint32(raw[8:])
	numGapBlocks := int(binary.BigEndian.Uint16(raw[12:]))
	numDuplicates := int(binary.BigEndian.Uint16(raw[14:]))

	offset := fixedHeaderLen
	need := numGapBlocks * gapAckBlockLen
	if offset+need > len(raw) {
		return sack, fmt.Errorf("%w: need %d bytes for %d blocks, have %d", ErrGapAckBlocksTruncated, numGapBlocks*gapAckBlockLen, numGapBlocks, len(raw)-offset)
	}

	if numGapBlocks > 0 {
		sack.GapAckBlocks = make([]sctp.GapAckBlock, numGapBlocks)
		for i := range sack.GapAckBlocks {
			sack.GapAckBlocks[i] = sctp.GapAckBlock{
				Start: binary.BigEndian.Uint16(raw[offset:]),
				End:   binary.BigEndian.Uint16(raw[offset+2:]),
			}
			offset += gapAckBlockLen
		}
	}

	if offset+numDuplicates*dupTSNLen > len(raw) {
		return sack, fmt.Errorf("%w: need %d bytes for %d TSNs, have %d", ErrDuplicatesTruncated, numDuplicates*dupTSNLen, numDuplicates, len(raw)-offset)
	}
	if numDuplicates > 0 {
		sack.Duplicates = make([]sctp.TSN, numDuplicates)
		for i := range sack.Duplicates {
			sack.Duplicates[i] = sctp.TSN(binary.BigEndian.Uint32(raw[offset:]))
			offset += dupTSNLen
		}
	}

	return sack, nil
}

// Encode serializes sack into a wire-format SACK chunk, including its
// 4-byte chunk header. flags is written verbatim into the chunk flags
// octet; RFC 4960 defines no SACK chunk flags, so callers normally pass 0.
func Encode(sack sctp.SackChunk, flags uint8) []byte {
	n := fixedHeaderLen + len(sack.GapAckBlocks)*gapAckBlockLen + len(sack.Duplicates)*dupTSNLen
	raw := make([]byte, n)

	raw[0] = chunkTypeSack
	raw[1] = flags
	binary.BigEndian.PutUint16(raw[2:], uint16(n))
	binary.BigEndian.PutUint32(raw[4:], uint32(sack.CumulativeTSNAck))
	binary.BigEndian.PutUint32(raw[8:], sack.ARWND)
	binary.BigEndian.PutUint16(raw[12:], uint16(len(sack.GapAckBlocks)))
	binary.BigEndian.PutUint16(raw[14:], uint16(len(sack.Duplicates)))

	offset := fixedHeaderLen
	for _, blk := range sack.GapAckBlocks {
		binary.BigEndian.PutUint16(raw[offset:], blk.Start)
		binary.BigEndian.PutUint16(raw[offset+2:], blk.End)
		offset += gapAckBlockLen
	}
	for _, tsn := range sack.Duplicates {
		binary.BigEndian.PutUint32(raw[offset:], uint32(tsn))
		offset += dupTSNLen
	}
	return raw
}
