package sackparse

import (
	"bytes"
	"errors"
	"testing"

	"github.com/soypat/sctp/sctp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		sack sctp.SackChunk
	}{
		{
			name: "cumulative-only",
			sack: sctp.SackChunk{CumulativeTSNAck: 100, ARWND: 65536},
		},
		{
			name: "with-gap-blocks",
			sack: sctp.SackChunk{
				CumulativeTSNAck: 100,
				ARWND:            32768,
				GapAckBlocks: []sctp.GapAckBlock{
					{Start: 2, End: 4},
					{Start: 6, End: 6},
				},
			},
		},
		{
			name: "with-duplicates",
			sack: sctp.SackChunk{
				CumulativeTSNAck: 5,
				ARWND:            1500,
				Duplicates:       []sctp.TSN{6, 6, 8},
			},
		},
		{
			name: "gaps-and-duplicates",
			sack: sctp.SackChunk{
				CumulativeTSNAck: 1000,
				ARWND:            4380,
				GapAckBlocks:     []sctp.GapAckBlock{{Start: 3, End: 3}},
				Duplicates:       []sctp.TSN{1001, 1005},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := Encode(tc.sack, 0)
			got, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.CumulativeTSNAck != tc.sack.CumulativeTSNAck || got.ARWND != tc.sack.ARWND {
				t.Fatalf("fixed fields mismatch: got %+v want %+v", got, tc.sack)
			}
			if len(got.GapAckBlocks) != len(tc.sack.GapAckBlocks) {
				t.Fatalf("gap ack blocks: got %d want %d", len(got.GapAckBlocks), len(tc.sack.GapAckBlocks))
			}
			for i := range got.GapAckBlocks {
				if got.GapAckBlocks[i] != tc.sack.GapAckBlocks[i] {
					t.Errorf("gap block %d: got %+v want %+v", i, got.GapAckBlocks[i], tc.sack.GapAckBlocks[i])
				}
			}
			if len(got.Duplicates) != len(tc.sack.Duplicates) {
				t.Fatalf("duplicates: got %d want %d", len(got.Duplicates), len(tc.sack.Duplicates))
			}
			for i := range got.Duplicates {
				if got.Duplicates[i] != tc.sack.Duplicates[i] {
					t.Errorf("duplicate %d: got %v want %v", i, got.Duplicates[i], tc.sack.Duplicates[i])
				}
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := Encode(sctp.SackChunk{CumulativeTSNAck: 1, ARWND: 2}, 0)

	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{
			name: "too-small",
			raw:  valid[:8],
			want: ErrRawTooSmall,
		},
		{
			name: "wrong-type",
			raw:  bytes.Replace(valid, []byte{3}, []byte{0}, 1),
			want: ErrUnexpectedChunkType,
		},
		{
			name: "length-exceeds-data",
			// One duplicate TSN makes the chunk 20 bytes; dropping its last
			// byte keeps it above the 16-byte minimum.
			raw:  Encode(sctp.SackChunk{CumulativeTSNAck: 1, ARWND: 2, Duplicates: []sctp.TSN{3}}, 0)[:19],
			want: ErrNotEnoughData,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got err %v, want wrapping %v", err, tc.want)
			}
		})
	}
}

func TestDecodeGapAckBlocksTruncated(t *testing.T) {
	sack := sctp.SackChunk{
		CumulativeTSNAck: 1,
		ARWND:            2,
		GapAckBlocks:     []sctp.GapAckBlock{{Start: 1, End: 2}, {Start: 4, End: 5}},
	}
	raw := Encode(sack, 0)
	// Claim two gap ack blocks, but truncate raw to fit only one.
	truncated := raw[:fixedHeaderLen+gapAckBlockLen]
	// Lower the declared length field to match, so the chunk passes the
	// declared-length check and is rejected by the gap-block parsing itself.
	truncated[2], truncated[3] = 0, byte(len(truncated))
	_, err := Decode(truncated)
	if !errors.Is(err, ErrGapAckBlocksTruncated) {
		t.Fatalf("got %v, want ErrGapAckBlocksTruncated", err)
	}
}
