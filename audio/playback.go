package audio

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrSinkClosed is returned when playing after the sink has been released
var ErrSinkClosed = errors.New("playback sink closed")

// PlaybackSink renders decoded PCM frames to the output device in the order
// received. The device is acquired lazily on the first frame and held open
// for the session lifetime; release happens only on Close.
type PlaybackSink struct {
	open SpeakerOpener

	mu      sync.Mutex
	speaker Speaker
	closed  bool
}

// NewPlaybackSink creates a sink that acquires its device via open
func NewPlaybackSink(open SpeakerOpener) *PlaybackSink {
	return &PlaybackSink{open: open}
}

// Play writes one PCM frame to the device, opening it first if needed.
// The write blocks until the device buffer accepts the data; there is no
// internal queueing beyond the device's own.
func (ps *PlaybackSink) Play(pcm []byte) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return ErrSinkClosed
	}

	if ps.speaker == nil {
		speaker, err := ps.open()
		if err != nil {
			return fmt.Errorf("failed to open playback device: %w", err)
		}
		ps.speaker = speaker
		log.Println("🔊 Playback device opened")
	}

	if _, err := ps.speaker.Write(pcm); err != nil {
		return fmt.Errorf("playback write: %w", err)
	}
	return nil
}

// Close releases the device. Safe to call more than once.
func (ps *PlaybackSink) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return nil
	}
	ps.closed = true

	if ps.speaker != nil {
		err := ps.speaker.Close()
		ps.speaker = nil
		if err != nil {
			return fmt.Errorf("failed to close playback device: %w", err)
		}
		log.Println("🔊 Playback device released")
	}
	return nil
}
