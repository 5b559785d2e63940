// Package realtime owns the persistent bidirectional connection to the
// conversational model.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"naboo-live/audio"
	"naboo-live/config"
	"naboo-live/messages"
	"naboo-live/transcript"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// State tracks the connection lifecycle. Closed and Failed are terminal for
// a connection instance; there is no automatic reconnect.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNotOpen is reported when an outbound operation is attempted while the
// connection is not in the Open state. The operation is a no-op.
var ErrNotOpen = errors.New("realtime connection not open")

const (
	writeBufferSize = 256
	writeTimeout    = 10 * time.Second
	maxMessageSize  = 512 * 1024

	visionContextFormat = "Context for conversation: Here is what I see in the image - %s. Please assist the user accordingly."
)

// Playback receives decoded PCM from inbound audio events
type Playback interface {
	Play(pcm []byte) error
}

// Client manages one long-lived, ordered message connection to the model.
// Inbound events are dispatched on a single goroutine, so turn-state
// transitions and transcript mutations never interleave with each other.
type Client struct {
	cfg        *config.Config
	transcript *transcript.Log
	sink       Playback

	// OnError receives non-fatal component errors surfaced during dispatch
	// (playback failures). Connection-level errors go to Fatal() instead.
	OnError func(err error)

	conn      *websocket.Conn
	state     atomic.Int32
	speaking  atomic.Bool
	writeChan chan any
	closeChan chan struct{}
	writeDone chan struct{}
	fatalChan chan error
	closeOnce sync.Once
}

// NewClient creates a client wired to the given transcript and playback sink
func NewClient(cfg *config.Config, tlog *transcript.Log, sink Playback) *Client {
	c := &Client{
		cfg:        cfg,
		transcript: tlog,
		sink:       sink,
		writeChan:  make(chan any, writeBufferSize),
		closeChan:  make(chan struct{}),
		writeDone:  make(chan struct{}),
		fatalChan:  make(chan error, 1),
	}
	c.state.Store(int32(StateDisconnected))
	return c
}

// State returns the current connection state
func (c *Client) State() State {
	return State(c.state.Load())
}

// ModelSpeaking reports whether inbound audio playback is in progress.
// Written only by the dispatcher goroutine; read by the capture loop.
func (c *Client) ModelSpeaking() bool {
	return c.speaking.Load()
}

// Fatal delivers the terminal connection error, if any. The session
// controller decides reconnect policy; the client never retries internally.
func (c *Client) Fatal() <-chan error {
	return c.fatalChan
}

// Connect dials the realtime endpoint, sends the one-time session
// configuration and starts the read/write pumps.
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return fmt.Errorf("cannot connect from state %s", c.State())
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.ConnectTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := dialer.DialContext(ctx, c.cfg.RealtimeURL, header)
	if err != nil {
		c.state.Store(int32(StateFailed))
		if resp != nil {
			return fmt.Errorf("realtime dial (%s): %w", resp.Status, err)
		}
		return fmt.Errorf("realtime dial: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	// Long-lived streaming connection: reads have no deadline
	c.conn = conn

	// Exactly one session configuration frame per connection, sent at the
	// Connecting -> Open transition. The write pump is not running yet, so
	// this write has no concurrent writer.
	if err := c.writeFrame(messages.NewSessionUpdate(c.sessionPayload())); err != nil {
		conn.Close()
		c.state.Store(int32(StateFailed))
		return fmt.Errorf("send session.update: %w", err)
	}

	c.state.Store(int32(StateOpen))
	log.Println("✅ Realtime connection open, session configured")

	go c.writePump()
	go c.readLoop()
	return nil
}

func (c *Client) sessionPayload() messages.SessionPayload {
	return messages.SessionPayload{
		Modalities:        []string{"text", "audio"},
		Instructions:      c.cfg.Instructions,
		Voice:             c.cfg.Voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		InputAudioTranscription: &messages.Transcription{
			Enabled: true,
			Model:   c.cfg.TranscriptionModel,
		},
		TurnDetection: &messages.TurnDetection{
			Type:              "server_vad",
			Threshold:         c.cfg.VADThreshold,
			PrefixPaddingMs:   c.cfg.VADPrefixPaddingMs,
			SilenceDurationMs: c.cfg.VADSilenceDurationMs,
		},
	}
}

// SendAudioChunk encodes and queues an audio-append frame. Non-blocking:
// the frame is dropped if the write queue is full. No-op unless Open.
func (c *Client) SendAudioChunk(pcm []byte) error {
	if c.State() != StateOpen {
		return ErrNotOpen
	}
	c.queueFrame(messages.NewInputAudioAppend(audio.EncodeChunk(pcm)))
	return nil
}

// CommitAudioBuffer signals end of a user utterance. Triggered by the
// input transcription completed event, not by external callers.
func (c *Client) CommitAudioBuffer() error {
	if c.State() != StateOpen {
		log.Println("⚠️ Audio commit requested but connection not open")
		return ErrNotOpen
	}
	c.queueFrame(messages.NewInputAudioCommit())
	return nil
}

// SendVisionContext transmits a response-creation request carrying the
// description as contextual instructions. No-op unless Open.
func (c *Client) SendVisionContext(description string) error {
	if c.State() != StateOpen {
		log.Println("⚠️ Vision context requested but connection not open")
		return ErrNotOpen
	}
	instructions := fmt.Sprintf(visionContextFormat, description)
	c.queueFrame(messages.NewResponseCreate(instructions, c.cfg.Voice))
	return nil
}

// queueFrame adds a frame to the write queue (non-blocking)
func (c *Client) queueFrame(frame any) {
	select {
	case c.writeChan <- frame:
	default:
		// Queue full, drop frame (shouldn't happen with proper sizing)
		log.Println("⚠️ Write queue full, dropping frame")
	}
}

// writeFrame marshals and writes a single frame on the connection
func (c *Client) writeFrame(frame any) error {
	data, err := sonic.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// writePump handles all outgoing frames in a single goroutine. Close waits
// for it to exit before writing the close frame, so the frame never races a
// queued write.
func (c *Client) writePump() {
	defer close(c.writeDone)

	for {
		select {
		case <-c.closeChan:
			return
		case frame := <-c.writeChan:
			if err := c.writeFrame(frame); err != nil {
				c.fail(fmt.Errorf("realtime write: %w", err))
				return
			}

			// Drain whatever else is queued before blocking again
			n := len(c.writeChan)
			for i := 0; i < n; i++ {
				select {
				case frame := <-c.writeChan:
					if err := c.writeFrame(frame); err != nil {
						c.fail(fmt.Errorf("realtime write: %w", err))
						return
					}
				default:
				}
			}
		}
	}
}

// readLoop receives inbound messages and dispatches them strictly in
// arrival order.
func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.State() == StateClosed {
				return
			}
			c.fail(fmt.Errorf("realtime read: %w", err))
			return
		}

		event, err := messages.ParseServerEvent(data)
		if err != nil {
			log.Printf("⚠️ Failed to parse server event: %v", err)
			continue
		}
		c.dispatch(event)
	}
}

// dispatch routes one inbound event by tag
func (c *Client) dispatch(event *messages.ServerEvent) {
	switch event.Type {
	case messages.TypeConversationItemCreated:
		if event.Item != nil && event.Item.Role == string(transcript.RoleAssistant) {
			c.transcript.Append(transcript.RoleAssistant, "")
		}

	case messages.TypeTranscriptionCompleted:
		log.Printf("📝 Input transcription completed: %s", event.Transcript)
		if err := c.CommitAudioBuffer(); err != nil {
			log.Printf("⚠️ Failed to commit audio buffer: %v", err)
		}

	case messages.TypeResponseTextDelta:
		// The service sends item.created before deltas; a delta with no
		// open assistant message is a protocol inconsistency, never fatal.
		if !c.transcript.ExtendLast(event.Delta) {
			log.Printf("⚠️ Text delta with no open assistant message, dropping: %q", event.Delta)
		}

	case messages.TypeResponseAudioDelta:
		c.speaking.Store(true)
		pcm, err := audio.DecodeChunk(event.Delta)
		if err != nil {
			log.Printf("⚠️ Failed to decode audio delta: %v", err)
			return
		}
		if err := c.sink.Play(pcm); err != nil {
			log.Printf("❌ Playback error: %v", err)
			if c.OnError != nil {
				c.OnError(err)
			}
		}

	case messages.TypeResponseAudioDone:
		c.speaking.Store(false)

	default:
		log.Printf("Unhandled server event type: %s", event.Type)
	}
}

// fail records a terminal connection error and surfaces it to the controller
func (c *Client) fail(err error) {
	for {
		s := c.state.Load()
		if State(s) == StateClosed || State(s) == StateFailed {
			return
		}
		if c.state.CompareAndSwap(s, int32(StateFailed)) {
			break
		}
	}
	log.Printf("❌ Realtime connection failed: %v", err)
	select {
	case c.fatalChan <- err:
	default:
	}
}

// Close terminates the connection with a normal closure code and cleans up.
// Safe to call more than once.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		wasOpen := c.State() == StateOpen
		if c.State() != StateFailed {
			c.state.Store(int32(StateClosed))
		}

		close(c.closeChan)

		if c.conn != nil {
			if wasOpen {
				// Wait for the write pump to finish so the close frame is the
				// last thing on the wire, then say goodbye properly.
				<-c.writeDone
				c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
			}
			closeErr = c.conn.Close()
		}
	})
	return closeErr
}
