package messages

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionUpdateWireShape(t *testing.T) {
	frame := NewSessionUpdate(SessionPayload{
		Modalities:        []string{"text", "audio"},
		Instructions:      "be brief",
		Voice:             "alloy",
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		InputAudioTranscription: &Transcription{
			Enabled: true,
			Model:   "whisper-1",
		},
		TurnDetection: &TurnDetection{
			Type:              "server_vad",
			Threshold:         0.5,
			PrefixPaddingMs:   300,
			SilenceDurationMs: 200,
		},
	})
	assert.NotEmpty(t, frame.EventID)

	data, err := sonic.Marshal(frame)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	assert.Equal(t, "session.update", decoded["type"])

	session := decoded["session"].(map[string]any)
	assert.Equal(t, "pcm16", session["input_audio_format"])
	assert.Equal(t, "pcm16", session["output_audio_format"])

	vad := session["turn_detection"].(map[string]any)
	assert.Equal(t, "server_vad", vad["type"])
	assert.EqualValues(t, 300, vad["prefix_padding_ms"])
	assert.EqualValues(t, 200, vad["silence_duration_ms"])
}

func TestParseServerEvent(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want func(t *testing.T, ev *ServerEvent)
	}{
		{
			name: "item created",
			raw:  `{"type":"conversation.item.created","item":{"id":"i1","role":"assistant"}}`,
			want: func(t *testing.T, ev *ServerEvent) {
				assert.Equal(t, TypeConversationItemCreated, ev.Type)
				require.NotNil(t, ev.Item)
				assert.Equal(t, "assistant", ev.Item.Role)
			},
		},
		{
			name: "transcription completed",
			raw:  `{"type":"conversation.item.input_audio_transcription.completed","transcript":"hello"}`,
			want: func(t *testing.T, ev *ServerEvent) {
				assert.Equal(t, TypeTranscriptionCompleted, ev.Type)
				assert.Equal(t, "hello", ev.Transcript)
			},
		},
		{
			name: "text delta",
			raw:  `{"type":"response.text.delta","delta":"Hi"}`,
			want: func(t *testing.T, ev *ServerEvent) {
				assert.Equal(t, TypeResponseTextDelta, ev.Type)
				assert.Equal(t, "Hi", ev.Delta)
			},
		},
		{
			name: "audio done",
			raw:  `{"type":"response.audio.done"}`,
			want: func(t *testing.T, ev *ServerEvent) {
				assert.Equal(t, TypeResponseAudioDone, ev.Type)
			},
		},
		{
			name: "unrecognized tag",
			raw:  `{"type":"rate_limits.updated","rate_limits":[]}`,
			want: func(t *testing.T, ev *ServerEvent) {
				assert.Equal(t, "rate_limits.updated", ev.Type)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := ParseServerEvent([]byte(tc.raw))
			require.NoError(t, err)
			tc.want(t, ev)
		})
	}
}

func TestParseServerEventMalformed(t *testing.T) {
	_, err := ParseServerEvent([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestNewVisionRequest(t *testing.T) {
	req := NewVisionRequest("gpt-4o-mini", "What's in this image?", "data:image/jpeg;base64,abcd", 300)

	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	require.Len(t, req.Messages[0].Content, 2)
	assert.Equal(t, "text", req.Messages[0].Content[0].Type)
	assert.Equal(t, "What's in this image?", req.Messages[0].Content[0].Text)
	assert.Equal(t, "image_url", req.Messages[0].Content[1].Type)
	require.NotNil(t, req.Messages[0].Content[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,abcd", req.Messages[0].Content[1].ImageURL.URL)
	assert.Equal(t, 300, req.MaxTokens)
}

func TestNewResponseCreateDefaults(t *testing.T) {
	frame := NewResponseCreate("context here", "alloy")
	assert.Equal(t, TypeResponseCreate, frame.Type)
	assert.Equal(t, []string{"text", "audio"}, frame.Response.Modalities)
	assert.Equal(t, "context here", frame.Response.Instructions)
	assert.Equal(t, "pcm16", frame.Response.OutputAudioFormat)
}
