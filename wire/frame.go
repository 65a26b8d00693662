// Package wire defines the framing used to stream clock samples from the
// device to a host over a byte pipe (UART, USB CDC).
//
// Frame layout:
//
//	[sync 0x7E] [len] [seq] [tick, 8 bytes little-endian] [crc16, big-endian]
//
// The CRC covers the length and payload bytes. len is the payload length
// (seq plus tick), kept explicit so the format can grow without breaking
// older hosts.
package wire

import (
	"bufio"
	"io"
)

const (
	// SyncByte marks the start of every frame.
	SyncByte = 0x7E

	samplePayloadLen = 9
	crcLen           = 2

	// FrameLen is the full on-wire size of a sample frame.
	FrameLen = 2 + samplePayloadLen + crcLen
)

// Sample is one clock observation reported by the device.
type Sample struct {
	Seq  uint8
	Tick uint64
}

// AppendSample appends the framed encoding of s to dst and returns the
// extended slice. With a dst of capacity FrameLen it does not allocate.
func AppendSample(dst []byte, s Sample) []byte {
	start := len(dst)
	dst = append(dst, SyncByte, samplePayloadLen, s.Seq,
		byte(s.Tick), byte(s.Tick>>8), byte(s.Tick>>16), byte(s.Tick>>24),
		byte(s.Tick>>32), byte(s.Tick>>40), byte(s.Tick>>48), byte(s.Tick>>56))
	crc := CRC16(dst[start+1:])
	return append(dst, byte(crc>>8), byte(crc))
}

// Decoder reads sample frames from a byte stream, skipping garbage between
// frames and frames that fail the CRC.
type Decoder struct {
	r *bufio.Reader

	// Dropped counts bytes discarded while hunting for a sync byte plus
	// frames rejected for a bad length or CRC.
	Dropped uint64
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next well-formed sample. It resynchronizes on corruption
// and only returns an error when the underlying stream does.
func (d *Decoder) Next() (Sample, error) {
	var buf [samplePayloadLen + crcLen + 1]byte
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return Sample{}, err
		}
		if b != SyncByte {
			d.Dropped++
			continue
		}

		length, err := d.r.ReadByte()
		if err != nil {
			return Sample{}, err
		}
		if length != samplePayloadLen {
			d.Dropped += 2
			continue
		}

		body := buf[:1+samplePayloadLen+crcLen]
		body[0] = length
		if _, err := io.ReadFull(d.r, body[1:]); err != nil {
			return Sample{}, err
		}

		payload := body[1 : 1+samplePayloadLen]
		wantCRC := uint16(body[1+samplePayloadLen])<<8 | uint16(body[2+samplePayloadLen])
		if CRC16(body[:1+samplePayloadLen]) != wantCRC {
			d.Dropped += uint64(len(body)) + 2
			continue
		}

		tick := uint64(payload[1]) | uint64(payload[2])<<8 | uint64(payload[3])<<16 |
			uint64(payload[4])<<24 | uint64(payload[5])<<32 | uint64(payload[6])<<40 |
			uint64(payload[7])<<48 | uint64(payload[8])<<56
		return Sample{Seq: payload[0], Tick: tick}, nil
	}
}
