package messages

// VisionRequest is the request body for the vision description endpoint
type VisionRequest struct {
	Model     string          `json:"model"`
	Messages  []VisionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

// VisionMessage is a single chat message with mixed text/image content
type VisionMessage struct {
	Role    string          `json:"role"`
	Content []VisionContent `json:"content"`
}

// VisionContent is one content part: either text or an image URL
type VisionContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps a data-URI-encoded frame
type ImageURL struct {
	URL string `json:"url"`
}

// VisionResponse is the response body; the first choice carries the description
type VisionResponse struct {
	Choices []VisionChoice `json:"choices"`
}

type VisionChoice struct {
	Message VisionChoiceMessage `json:"message"`
}

type VisionChoiceMessage struct {
	Content string `json:"content"`
}

// NewVisionRequest builds a single-user-turn vision request carrying the
// fixed prompt and one data-URI-encoded frame
func NewVisionRequest(model, prompt, dataURI string, maxTokens int) *VisionRequest {
	return &VisionRequest{
		Model: model,
		Messages: []VisionMessage{
			{
				Role: "user",
				Content: []VisionContent{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}},
				},
			},
		},
		MaxTokens: maxTokens,
	}
}
