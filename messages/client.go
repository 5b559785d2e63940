package messages

import "github.com/google/uuid"

// Outbound frame types
const (
	TypeSessionUpdate    = "session.update"
	TypeInputAudioAppend = "input_audio_buffer.append"
	TypeInputAudioCommit = "input_audio_buffer.commit"
	TypeResponseCreate   = "response.create"
)

// SessionUpdate configures the realtime session. Sent exactly once, on open.
type SessionUpdate struct {
	EventID string         `json:"event_id,omitempty"`
	Type    string         `json:"type"`
	Session SessionPayload `json:"session"`
}

// SessionPayload carries modalities, voice, audio formats, transcription
// model and turn-detection parameters.
type SessionPayload struct {
	Modalities              []string       `json:"modalities"`
	Instructions            string         `json:"instructions"`
	Voice                   string         `json:"voice"`
	InputAudioFormat        string         `json:"input_audio_format"`
	OutputAudioFormat       string         `json:"output_audio_format"`
	InputAudioTranscription *Transcription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection `json:"turn_detection,omitempty"`
}

// Transcription enables server-side transcription of user audio
type Transcription struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model"`
}

// TurnDetection holds server VAD parameters
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

// InputAudioAppend carries one transport-encoded audio chunk
type InputAudioAppend struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
	Audio   string `json:"audio"`
}

// InputAudioCommit marks the end of a user utterance
type InputAudioCommit struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
}

// ResponseCreate asks the model to respond with the given contextual instructions
type ResponseCreate struct {
	EventID  string          `json:"event_id,omitempty"`
	Type     string          `json:"type"`
	Response ResponsePayload `json:"response"`
}

// ResponsePayload shapes the requested model response
type ResponsePayload struct {
	Modalities        []string `json:"modalities"`
	Instructions      string   `json:"instructions"`
	Voice             string   `json:"voice"`
	OutputAudioFormat string   `json:"output_audio_format"`
}

// NewSessionUpdate creates the one-time session configuration frame
func NewSessionUpdate(session SessionPayload) *SessionUpdate {
	return &SessionUpdate{
		EventID: uuid.New().String(),
		Type:    TypeSessionUpdate,
		Session: session,
	}
}

// NewInputAudioAppend creates an audio-append frame from encoded audio
func NewInputAudioAppend(audio string) *InputAudioAppend {
	return &InputAudioAppend{
		EventID: uuid.New().String(),
		Type:    TypeInputAudioAppend,
		Audio:   audio,
	}
}

// NewInputAudioCommit creates an audio-commit frame
func NewInputAudioCommit() *InputAudioCommit {
	return &InputAudioCommit{
		EventID: uuid.New().String(),
		Type:    TypeInputAudioCommit,
	}
}

// NewResponseCreate creates a response-creation request carrying contextual instructions
func NewResponseCreate(instructions, voice string) *ResponseCreate {
	return &ResponseCreate{
		EventID: uuid.New().String(),
		Type:    TypeResponseCreate,
		Response: ResponsePayload{
			Modalities:        []string{"text", "audio"},
			Instructions:      instructions,
			Voice:             voice,
			OutputAudioFormat: "pcm16",
		},
	}
}
