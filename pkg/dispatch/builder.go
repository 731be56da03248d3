package dispatch

import (
	"fmt"
	"net/http"
	"net/url"

	"modelhub/pkg/catalog"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// visionPrompt is the fixed instruction sent alongside an uploaded image.
const visionPrompt = "What do you see in this image?"

// translateTarget is the fixed target language code of the translation
// capability.
const translateTarget = "es"

// BuilderFunc maps (endpoint, input) to a transport request description.
// Builders are pure: no I/O, no state.
type BuilderFunc func(endpoint, input string) (*RequestSpec, error)

// categoryBuilders is the primary dispatch table, keyed on the dominant
// axis of wire-shape variation. Utility is absent on purpose: its two
// members do not share a wire shape and are resolved via
// capabilityBuilders instead.
var categoryBuilders = map[catalog.Category]BuilderFunc{
	catalog.CategoryText:     buildChatRequest,
	catalog.CategoryImage:    buildImageRequest,
	catalog.CategoryVision:   buildVisionRequest,
	catalog.CategoryLanguage: buildTranslateRequest,
	catalog.CategorySearch:   buildSearchRequest,
}

// capabilityBuilders overrides the category table for capabilities whose
// wire shape diverges from their category siblings.
var capabilityBuilders = map[string]BuilderFunc{
	"weather": buildWeatherRequest,
	"qr":      buildQRRequest,
}

// BuildRequest produces the RequestSpec for one submission. Resolution
// order: capability ID override first, then category. A descriptor that
// matches neither is a configuration defect, not a user error; it yields
// ErrConfiguration and no RequestSpec.
func BuildRequest(d *catalog.Descriptor, input string) (*RequestSpec, error) {
	if build, ok := capabilityBuilders[d.ID]; ok {
		return build(d.Endpoint, input)
	}
	if build, ok := categoryBuilders[d.Category]; ok {
		return build(d.Endpoint, input)
	}
	return nil, fmt.Errorf("no builder for capability %q (category %q): %w", d.ID, d.Category, ErrConfiguration)
}

// IsOpaque reports whether the capability's response body must be kept
// as an opaque blob instead of being parsed as JSON. This applies to the
// image-producing endpoints whose bodies are URLs or base64 blobs.
func IsOpaque(d *catalog.Descriptor) bool {
	return d.Category == catalog.CategoryImage || d.ID == "qr"
}

// chatMessage mirrors the chat-completion request schema shared by the
// text and vision categories.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatBody struct {
	Messages []chatMessage `json:"messages"`
}

func postJSON(endpoint string, body any) (*RequestSpec, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &RequestSpec{
		Method:   http.MethodPost,
		URL:      endpoint,
		Header:   header,
		BodyKind: BodyJSON,
		Body:     encoded,
	}, nil
}

func getWithQuery(endpoint, key, value string) *RequestSpec {
	q := url.Values{}
	q.Set(key, value)
	return &RequestSpec{
		Method:   http.MethodGet,
		URL:      endpoint + "?" + q.Encode(),
		Header:   make(http.Header),
		BodyKind: BodyNone,
	}
}

// buildChatRequest covers the text category: a single user message with
// the prompt as plain string content.
func buildChatRequest(endpoint, input string) (*RequestSpec, error) {
	return postJSON(endpoint, chatBody{
		Messages: []chatMessage{{Role: "user", Content: input}},
	})
}

// buildVisionRequest sends a two-part user message: the fixed analysis
// instruction plus the uploaded image, which arrives here as a data-URI
// string produced by the input widget.
func buildVisionRequest(endpoint, input string) (*RequestSpec, error) {
	content := []map[string]any{
		{"type": "text", "text": visionPrompt},
		{"type": "image_url", "image_url": map[string]string{"url": input}},
	}
	return postJSON(endpoint, chatBody{
		Messages: []chatMessage{{Role: "user", Content: content}},
	})
}

func buildImageRequest(endpoint, input string) (*RequestSpec, error) {
	return getWithQuery(endpoint, "prompt", input), nil
}

func buildSearchRequest(endpoint, input string) (*RequestSpec, error) {
	return getWithQuery(endpoint, "q", input), nil
}

// buildTranslateRequest posts a form-encoded body with a fixed target
// language, matching the translation service's contract.
func buildTranslateRequest(endpoint, input string) (*RequestSpec, error) {
	form := url.Values{}
	form.Set("q", input)
	form.Set("target", translateTarget)

	header := make(http.Header)
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	return &RequestSpec{
		Method:   http.MethodPost,
		URL:      endpoint,
		Header:   header,
		BodyKind: BodyForm,
		Body:     []byte(form.Encode()),
	}, nil
}

// buildWeatherRequest appends the city name to the endpoint path.
func buildWeatherRequest(endpoint, input string) (*RequestSpec, error) {
	return &RequestSpec{
		Method:   http.MethodGet,
		URL:      endpoint + url.PathEscape(input),
		Header:   make(http.Header),
		BodyKind: BodyNone,
	}, nil
}

func buildQRRequest(endpoint, input string) (*RequestSpec, error) {
	return getWithQuery(endpoint, "data", input), nil
}
