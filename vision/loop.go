package vision

import (
	"context"
	"log"
	"time"

	"naboo-live/transcript"
)

const transcriptPrefix = "Image Description: "

// ContextSender feeds a description into the protocol connection
type ContextSender interface {
	SendVisionContext(description string) error
}

// Loop captures a frame on a fixed period, describes it and feeds the
// result into the conversation. At most one cycle is in flight; a slow
// cycle delays the next tick rather than overlapping with it.
type Loop struct {
	camera    Camera
	describer FrameDescriber
	log       *transcript.Log
	sender    ContextSender
	interval  time.Duration
}

// NewLoop creates a vision augmentation loop
func NewLoop(camera Camera, describer FrameDescriber, tlog *transcript.Log, sender ContextSender, interval time.Duration) *Loop {
	return &Loop{
		camera:    camera,
		describer: describer,
		log:       tlog,
		sender:    sender,
		interval:  interval,
	}
}

// Run fires cycles until the context is cancelled. The first cycle runs
// immediately so the conversation has visual context from the start; after
// that the interval is fixed. A failed cycle is abandoned and the loop
// continues at the next scheduled interval.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	log.Printf("📷 Vision loop started (every %s)", l.interval)
	l.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("📷 Vision loop stopped")
			return
		case <-ticker.C:
			l.cycle(ctx)
		}
	}
}

// cycle runs one capture -> describe -> augment pass. Any step failing
// aborts only this cycle.
func (l *Loop) cycle(ctx context.Context) {
	frame, err := l.camera.Capture(ctx)
	if err != nil {
		log.Printf("⚠️ Frame capture failed, skipping cycle: %v", err)
		return
	}

	description, err := l.describer.Describe(ctx, frame)
	if err != nil {
		log.Printf("⚠️ Vision description failed, skipping cycle: %v", err)
		return
	}

	log.Printf("📷 Vision description: %s", description)
	l.log.Append(transcript.RoleSystem, transcriptPrefix+description)
	if err := l.sender.SendVisionContext(description); err != nil {
		log.Printf("⚠️ Failed to send vision context: %v", err)
	}
}
