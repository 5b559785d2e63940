package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"naboo-live/audio"
	"naboo-live/config"
	"naboo-live/session"
	"naboo-live/transcript"
	"naboo-live/vision"
)

// stdoutSpeaker renders playback PCM to stdout so it can be piped into a
// player (e.g. ffplay -f s16le -ar 24000 -ch_layout mono -). Close is a
// no-op: stdout outlives the session.
type stdoutSpeaker struct{}

func (stdoutSpeaker) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdoutSpeaker) Close() error                { return nil }

// fileCamera re-reads a JPEG from disk on every cycle, so the file can be
// swapped out underneath a running session.
type fileCamera struct {
	path string
}

func (fc fileCamera) Capture(_ context.Context) ([]byte, error) {
	return os.ReadFile(fc.path)
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Microphone PCM (16kHz mono 16-bit) arrives on stdin, e.g. from
	// ffmpeg -f alsa -i default -f s16le -ar 16000 -ac 1 -
	var camera vision.Camera
	if cfg.CameraFramePath != "" {
		camera = fileCamera{path: cfg.CameraFramePath}
	} else {
		log.Println("📷 CAMERA_FRAME_PATH not set, vision augmentation disabled")
	}

	ctrl := session.NewController(cfg, os.Stdin, func() (audio.Speaker, error) {
		return stdoutSpeaker{}, nil
	}, camera)

	// Print transcript updates as they arrive
	updates, unsubscribe := ctrl.Transcript().Subscribe(64)
	defer unsubscribe()
	go func() {
		for update := range updates {
			switch update.Kind {
			case transcript.UpdateAppend:
				log.Printf("💬 [%s] %s", update.Role, update.Text)
			default:
				log.Printf("💬 [%s] +%q", update.Role, update.Text)
			}
		}
		log.Println("💬 Transcript closed, session ended")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("\nReceived shutdown signal...")
	case err := <-ctrl.Err():
		log.Printf("Session error: %v", err)
	}

	ctrl.Stop()
	log.Println("Session stopped")
}
