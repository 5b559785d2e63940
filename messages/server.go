package messages

import "github.com/bytedance/sonic"

// Inbound event types consumed by the dispatcher. Anything else is ignored.
const (
	TypeConversationItemCreated = "conversation.item.created"
	TypeTranscriptionCompleted  = "conversation.item.input_audio_transcription.completed"
	TypeResponseTextDelta       = "response.text.delta"
	TypeResponseAudioDelta      = "response.audio.delta"
	TypeResponseAudioDone       = "response.audio.done"
)

// ServerEvent is the envelope for inbound protocol messages. Fields are
// populated depending on Type; the event is consumed once and never stored.
type ServerEvent struct {
	Type       string            `json:"type"`
	Delta      string            `json:"delta,omitempty"`
	Transcript string            `json:"transcript,omitempty"`
	Item       *ConversationItem `json:"item,omitempty"`
}

// ConversationItem is the inner "item" object of conversation.item.created
type ConversationItem struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
	Role string `json:"role,omitempty"`
}

// ParseServerEvent decodes a raw inbound message into a ServerEvent
func ParseServerEvent(data []byte) (*ServerEvent, error) {
	var event ServerEvent
	if err := sonic.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
