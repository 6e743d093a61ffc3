package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"layeh.com/gopus"
)

// Encoder turns one PCM frame into an opus packet.
type Encoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

func NewOpusEncoder() (Encoder, error) {
	enc, err := gopus.NewEncoder(SampleRate, Channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	return enc, nil
}

// SendOpus encodes r frame by frame into send until r ends or ctx is done.
// firstFrame, if set, runs once the first packet was handed to send. A clean
// end of r and a cancelled ctx both return nil.
func SendOpus(ctx context.Context, r io.Reader, enc Encoder, send chan<- []byte, firstFrame func()) error {
	pcm := make([]byte, frameBytes)
	samples := make([]int16, FrameSize*Channels)
	sent := false

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := io.ReadFull(r, pcm); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if !sent {
					return errors.New("stream ended before any audio")
				}
				return nil
			}
			return fmt.Errorf("read pcm: %w", err)
		}

		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		}
		packet, err := enc.Encode(samples, FrameSize, frameBytes)
		if err != nil {
			return fmt.Errorf("encode opus: %w", err)
		}

		select {
		case send <- packet:
		case <-ctx.Done():
			return nil
		}
		if !sent {
			sent = true
			if firstFrame != nil {
				firstFrame()
			}
		}
	}
}
