// Package session wires the capture loop, playback sink, protocol client and
// vision loop together and owns their lifecycles.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"naboo-live/audio"
	"naboo-live/config"
	"naboo-live/realtime"
	"naboo-live/transcript"
	"naboo-live/vision"

	"github.com/google/uuid"
)

// Controller is the composition root for one live session. External callers
// use only Start, Stop, Err and Transcript.
type Controller struct {
	ID string

	cfg        *config.Config
	transcript *transcript.Log
	client     *realtime.Client
	sink       *audio.PlaybackSink
	capture    *audio.CaptureLoop
	visionLoop *vision.Loop // nil when no camera collaborator is supplied

	errChan chan error
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
}

// NewController wires a session from its collaborators. A nil camera
// disables the vision augmentation loop.
func NewController(cfg *config.Config, mic audio.Microphone, opener audio.SpeakerOpener, camera vision.Camera) *Controller {
	tlog := transcript.NewLog()
	sink := audio.NewPlaybackSink(opener)
	client := realtime.NewClient(cfg, tlog, sink)
	capture := audio.NewCaptureLoop(mic, client, client, cfg.CaptureFrameBytes)

	c := &Controller{
		ID:         uuid.New().String(),
		cfg:        cfg,
		transcript: tlog,
		client:     client,
		sink:       sink,
		capture:    capture,
		errChan:    make(chan error, 4),
	}
	client.OnError = func(err error) { c.report(err) }

	if camera != nil {
		c.visionLoop = vision.NewLoop(camera, vision.NewDescriber(cfg), tlog, client, cfg.VisionInterval)
	}
	return c
}

// Transcript exposes the conversation log to the rendering observer
func (c *Controller) Transcript() *transcript.Log {
	return c.transcript
}

// Err delivers session errors. Connection failures are fatal and stop the
// session; device errors from one loop leave the other loops running.
func (c *Controller) Err() <-chan error {
	return c.errChan
}

// Start opens the connection and launches the loops. The connection must be
// establishing before capture begins sending, so it is brought up first.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	c.started = true
	c.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if err := c.client.Connect(runCtx); err != nil {
		cancel()
		c.sink.Close()
		return fmt.Errorf("failed to open realtime connection: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.capture.Run(runCtx); err != nil {
			// Capture device failure stops only the capture loop
			c.report(fmt.Errorf("capture loop: %w", err))
		}
	}()

	if c.visionLoop != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.visionLoop.Run(runCtx)
		}()
	}

	// Connection failures are terminal for the session
	go func() {
		select {
		case err := <-c.client.Fatal():
			c.report(fmt.Errorf("realtime connection: %w", err))
			c.Stop()
		case <-runCtx.Done():
		}
	}()

	log.Printf("✅ Session started: %s", c.ID)
	return nil
}

// Stop tears the session down: vision and capture loops first, then the
// connection (normal closure), then the playback device. Idempotent and
// safe to call from error paths.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		log.Printf("🛑 Stopping session: %s", c.ID)

		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()

		if err := c.client.Close(); err != nil {
			log.Printf("⚠️ Connection close: %v", err)
		}
		if err := c.sink.Close(); err != nil {
			log.Printf("⚠️ Playback release: %v", err)
		}

		// Closing the log tells the transcript observer the session ended
		c.transcript.Close()
		log.Printf("🔌 Session stopped: %s", c.ID)
	})
}

// report surfaces an error without blocking the reporting loop
func (c *Controller) report(err error) {
	log.Printf("❌ [%s] %v", c.ID[:8], err)
	select {
	case c.errChan <- err:
	default:
	}
}
