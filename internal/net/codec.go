package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	frameHeaderLen = 2
	// MaxFramePayload is the largest payload the 16-bit length header can carry.
	MaxFramePayload = 1<<16 - 1 - frameHeaderLen
)

var (
	ErrEmptyFrame    = errors.New("empty frame")
	ErrFrameTooLarge = errors.New("frame too large")
)

// ReadFrame reads one feed frame from r. The header is the little-endian
// total length, header included. Payloads above maxPayload are rejected
// before anything is allocated; maxPayload <= 0 means MaxFramePayload.
func ReadFrame(r io.Reader, maxPayload int) ([]byte, error) {
	if maxPayload <= 0 || maxPayload > MaxFramePayload {
		maxPayload = MaxFramePayload
	}
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	total := int(binary.LittleEndian.Uint16(header[:]))
	n := total - frameHeaderLen
	switch {
	case n <= 0:
		return nil, fmt.Errorf("frame length %d: %w", total, ErrEmptyFrame)
	case n > maxPayload:
		return nil, fmt.Errorf("frame payload %d > %d: %w", n, maxPayload, ErrFrameTooLarge)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", n, err)
	}
	return payload, nil
}

// WriteFrame writes data as one frame. Header and payload go out in a single
// write so a timed-out write never leaves a bare header on the wire.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFrame
	}
	if len(data) > MaxFramePayload {
		return fmt.Errorf("frame payload %d: %w", len(data), ErrFrameTooLarge)
	}
	frame := make([]byte, frameHeaderLen+len(data))
	binary.LittleEndian.PutUint16(frame, uint16(len(frame)))
	copy(frame[frameHeaderLen:], data)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
