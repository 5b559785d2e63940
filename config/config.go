package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all session configuration. Built once at startup and treated
// as immutable afterwards.
type Config struct {
	APIKey             string
	RealtimeURL        string
	VisionURL          string
	Voice              string
	TranscriptionModel string
	VisionModel        string
	Instructions       string
	VisionPrompt       string

	// Server-side voice activity detection parameters, forwarded verbatim
	// in the session.update frame.
	VADThreshold         float64
	VADPrefixPaddingMs   int
	VADSilenceDurationMs int

	CaptureFrameBytes int           // Microphone frame size in bytes (16kHz mono 16-bit PCM)
	VisionInterval    time.Duration // Period between camera capture cycles
	VisionMaxTokens   int           // Response length cap for the vision endpoint
	VisionTimeout     time.Duration // HTTP timeout for a single vision call
	ConnectTimeout    time.Duration // WebSocket handshake timeout

	CameraFramePath string // Optional JPEG source for the CLI harness; empty disables vision
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		RealtimeURL:          "wss://api.openai.com/v1/realtime?model=gpt-4o-realtime-preview-2024-10-01",
		VisionURL:            "https://api.openai.com/v1/chat/completions",
		Voice:                "alloy",
		TranscriptionModel:   "whisper-1",
		VisionModel:          "gpt-4o-mini",
		Instructions:         DefaultInstructions,
		VisionPrompt:         DefaultVisionPrompt,
		VADThreshold:         0.5,
		VADPrefixPaddingMs:   300,
		VADSilenceDurationMs: 200,
		CaptureFrameBytes:    3200, // 100ms at 16kHz mono 16-bit
		VisionInterval:       3500 * time.Millisecond,
		VisionMaxTokens:      300,
		VisionTimeout:        30 * time.Second,
		ConnectTimeout:       15 * time.Second,
	}

	// Required: OPENAI_API_KEY
	config.APIKey = os.Getenv("OPENAI_API_KEY")
	if config.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	// Optional: REALTIME_URL
	if url := os.Getenv("REALTIME_URL"); url != "" {
		config.RealtimeURL = url
	}

	// Optional: VISION_URL
	if url := os.Getenv("VISION_URL"); url != "" {
		config.VisionURL = url
	}

	// Optional: VOICE
	if voice := os.Getenv("VOICE"); voice != "" {
		config.Voice = voice
	}

	// Optional: TRANSCRIPTION_MODEL
	if model := os.Getenv("TRANSCRIPTION_MODEL"); model != "" {
		config.TranscriptionModel = model
	}

	// Optional: VISION_MODEL
	if model := os.Getenv("VISION_MODEL"); model != "" {
		config.VisionModel = model
	}

	// Optional: INSTRUCTIONS
	if instructions := os.Getenv("INSTRUCTIONS"); instructions != "" {
		config.Instructions = instructions
	}

	// Optional: VISION_PROMPT
	if prompt := os.Getenv("VISION_PROMPT"); prompt != "" {
		config.VisionPrompt = prompt
	}

	// Optional: VAD_THRESHOLD
	if threshold := os.Getenv("VAD_THRESHOLD"); threshold != "" {
		t, err := strconv.ParseFloat(threshold, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid VAD_THRESHOLD: %w", err)
		}
		config.VADThreshold = t
	}

	// Optional: VAD_PREFIX_PADDING_MS
	if padding := os.Getenv("VAD_PREFIX_PADDING_MS"); padding != "" {
		p, err := strconv.Atoi(padding)
		if err != nil {
			return nil, fmt.Errorf("invalid VAD_PREFIX_PADDING_MS: %w", err)
		}
		config.VADPrefixPaddingMs = p
	}

	// Optional: VAD_SILENCE_DURATION_MS
	if silence := os.Getenv("VAD_SILENCE_DURATION_MS"); silence != "" {
		s, err := strconv.Atoi(silence)
		if err != nil {
			return nil, fmt.Errorf("invalid VAD_SILENCE_DURATION_MS: %w", err)
		}
		config.VADSilenceDurationMs = s
	}

	// Optional: CAPTURE_FRAME_BYTES
	if frameBytes := os.Getenv("CAPTURE_FRAME_BYTES"); frameBytes != "" {
		f, err := strconv.Atoi(frameBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid CAPTURE_FRAME_BYTES: %w", err)
		}
		config.CaptureFrameBytes = f
	}

	// Optional: VISION_INTERVAL_MS
	if interval := os.Getenv("VISION_INTERVAL_MS"); interval != "" {
		i, err := strconv.Atoi(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid VISION_INTERVAL_MS: %w", err)
		}
		config.VisionInterval = time.Duration(i) * time.Millisecond
	}

	// Optional: VISION_MAX_TOKENS
	if maxTokens := os.Getenv("VISION_MAX_TOKENS"); maxTokens != "" {
		m, err := strconv.Atoi(maxTokens)
		if err != nil {
			return nil, fmt.Errorf("invalid VISION_MAX_TOKENS: %w", err)
		}
		config.VisionMaxTokens = m
	}

	// Optional: VISION_TIMEOUT (in seconds)
	if timeout := os.Getenv("VISION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid VISION_TIMEOUT: %w", err)
		}
		config.VisionTimeout = time.Duration(t) * time.Second
	}

	// Optional: CONNECT_TIMEOUT (in seconds)
	if timeout := os.Getenv("CONNECT_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid CONNECT_TIMEOUT: %w", err)
		}
		config.ConnectTimeout = time.Duration(t) * time.Second
	}

	// Optional: CAMERA_FRAME_PATH
	if path := os.Getenv("CAMERA_FRAME_PATH"); path != "" {
		config.CameraFramePath = path
	}

	return config, nil
}
