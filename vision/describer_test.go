package vision

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"naboo-live/config"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describerConfig(url string) *config.Config {
	return &config.Config{
		APIKey:          "test-key",
		VisionURL:       url,
		VisionModel:     "gpt-4o-mini",
		VisionPrompt:    "What's in this image?",
		VisionMaxTokens: 300,
		VisionTimeout:   5 * time.Second,
	}
}

func TestDescribeSendsFrameAndReturnsDescription(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, sonic.Unmarshal(data, &gotBody))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"a red car"}}]}`))
	}))
	t.Cleanup(srv.Close)

	d := NewDescriber(describerConfig(srv.URL))
	description, err := d.Describe(context.Background(), []byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, "a red car", description)
	assert.Equal(t, "Bearer test-key", gotAuth)

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.EqualValues(t, 300, gotBody["max_tokens"])

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)

	text := content[0].(map[string]any)
	assert.Equal(t, "text", text["type"])
	assert.Equal(t, "What's in this image?", text["text"])

	image := content[1].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	url := image["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

func TestDescribeEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	d := NewDescriber(describerConfig(srv.URL))
	_, err := d.Describe(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestDescribeNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	d := NewDescriber(describerConfig(srv.URL))
	_, err := d.Describe(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrNoDescription)
}
