package audio

import (
	"context"
	"fmt"
	"log"
)

// TurnGate reports whether the model is currently speaking. The capture loop
// consults it per frame; frames captured while the model speaks are discarded.
type TurnGate interface {
	ModelSpeaking() bool
}

// Sender forwards captured frames toward the protocol connection
type Sender interface {
	SendAudioChunk(pcm []byte) error
}

// CaptureLoop continuously pulls fixed-size PCM frames from the microphone
// and forwards them, gated by the turn-taking flag.
type CaptureLoop struct {
	mic       Microphone
	sender    Sender
	gate      TurnGate
	frameSize int
}

// NewCaptureLoop creates a capture loop reading frames of frameSize bytes
func NewCaptureLoop(mic Microphone, sender Sender, gate TurnGate, frameSize int) *CaptureLoop {
	return &CaptureLoop{
		mic:       mic,
		sender:    sender,
		gate:      gate,
		frameSize: frameSize,
	}
}

// Run reads frames until the context is cancelled or the device fails.
// A read error stops the loop and is returned; send failures are logged and
// the loop continues (transport delivery is best effort).
func (cl *CaptureLoop) Run(ctx context.Context) error {
	buf := make([]byte, cl.frameSize)
	for {
		select {
		case <-ctx.Done():
			log.Println("🎤 Capture loop stopped")
			return nil
		default:
			n, err := cl.mic.Read(buf)
			if err != nil {
				return fmt.Errorf("microphone read: %w", err)
			}
			if n == 0 {
				continue
			}
			// Half-duplex gate: checked at the moment of capture, per frame
			if cl.gate.ModelSpeaking() {
				continue
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if err := cl.sender.SendAudioChunk(chunk); err != nil {
				log.Printf("⚠️ Failed to send captured frame: %v", err)
			}
		}
	}
}
