package dispatch

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

//----------------------------------------------------------------
// RequestSpec - the fully-built description of an outbound call
//----------------------------------------------------------------

// BodyKind declares which body encoding a RequestSpec carries.
// Exactly one of the three is valid for a given spec.
type BodyKind int

const (
	BodyNone BodyKind = iota // GET requests, no body
	BodyJSON                 // application/json payload
	BodyForm                 // application/x-www-form-urlencoded payload
)

// RequestSpec describes an outbound capability call before execution.
// It is produced by the request builder and consumed by the invoker;
// nothing mutates it in between.
type RequestSpec struct {
	Method   string
	URL      string
	Header   http.Header
	BodyKind BodyKind
	Body     []byte // encoded per BodyKind, nil when BodyNone
}

//----------------------------------------------------------------
// Payload - the raw outcome of a successful invocation
//----------------------------------------------------------------

// Payload holds the decoded body of a successful invocation.
// Exactly one field is set: JSON for categories whose responses are
// parsed, Blob for opaque image/QR style bodies.
type Payload struct {
	JSON jsoniter.RawMessage
	Blob string
}

//----------------------------------------------------------------
// Result - the normalized, renderable outcome
//----------------------------------------------------------------

// ResultKind tags the variant carried by a Result.
type ResultKind string

const (
	KindText        ResultKind = "text"
	KindImage       ResultKind = "image"
	KindVision      ResultKind = "vision"
	KindTranslation ResultKind = "translation"
	KindSearch      ResultKind = "search"
	KindWeather     ResultKind = "weather"
	KindQR          ResultKind = "qr"
	KindRaw         ResultKind = "raw"
)

// Result is the category-tagged, UI-ready shape of a successful response.
// Only the field matching Kind is populated. A Result is created fresh per
// invocation and replaced wholesale, never partially updated.
type Result struct {
	Kind        ResultKind         `json:"kind"`
	Text        *TextResult        `json:"text,omitempty"`
	Image       *ImageResult       `json:"image,omitempty"`
	Vision      *VisionResult      `json:"vision,omitempty"`
	Translation *TranslationResult `json:"translation,omitempty"`
	Search      *SearchResult      `json:"search,omitempty"`
	Weather     *WeatherResult     `json:"weather,omitempty"`
	QR          *QRResult          `json:"qr,omitempty"`
	Raw         *RawResult         `json:"raw,omitempty"`
}

// TextResult carries a plain generated text answer.
type TextResult struct {
	Content string `json:"content"`
}

// ImageResult carries a reference to a generated image.
type ImageResult struct {
	ImageURL string `json:"image_url"`
}

// VisionResult pairs the analysed image with the model's analysis so the
// UI can render them side by side.
type VisionResult struct {
	ImageURL string `json:"image_url"`
	Analysis string `json:"analysis"`
}

// TranslationResult pairs the original input with its translation.
type TranslationResult struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

// SearchItem is a single entry of a search-family response.
type SearchItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

// SearchResult carries an ordered list of search items. Zero items is a
// valid result, not an error.
type SearchResult struct {
	Items []SearchItem `json:"items"`
}

// WeatherResult flattens the nested location/current-conditions payload.
type WeatherResult struct {
	Location     string  `json:"location"`
	Region       string  `json:"region"`
	TemperatureC float64 `json:"temperature_c"`
	Condition    string  `json:"condition"`
	Humidity     int     `json:"humidity"`
	WindKph      float64 `json:"wind_kph"`
	FeelsLikeC   float64 `json:"feels_like_c"`
	PressureMb   float64 `json:"pressure_mb"`
}

// QRResult pairs the generated QR image reference with the data that was
// encoded into it.
type QRResult struct {
	ImageURL    string `json:"image_url"`
	EncodedData string `json:"encoded_data"`
}

// RawResult is the defensive fallback for payloads no interpreter claims.
type RawResult struct {
	Payload string `json:"payload"`
}

// Summary renders a short single-line description of the result for
// logs and monitoring. Full rendering belongs to the channels.
func (r *Result) Summary() string {
	switch r.Kind {
	case KindText:
		return truncate(r.Text.Content, 100)
	case KindImage:
		return "image: " + truncate(r.Image.ImageURL, 80)
	case KindVision:
		return truncate(r.Vision.Analysis, 100)
	case KindTranslation:
		return truncate(r.Translation.Translated, 100)
	case KindSearch:
		return fmt.Sprintf("%d search results", len(r.Search.Items))
	case KindWeather:
		return fmt.Sprintf("%s: %.1f°C, %s", r.Weather.Location, r.Weather.TemperatureC, r.Weather.Condition)
	case KindQR:
		return "qr code for: " + truncate(r.QR.EncodedData, 80)
	default:
		return "raw payload"
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func NewTextResult(content string) *Result {
	return &Result{Kind: KindText, Text: &TextResult{Content: content}}
}

func NewImageResult(url string) *Result {
	return &Result{Kind: KindImage, Image: &ImageResult{ImageURL: url}}
}

func NewVisionResult(imageURL, analysis string) *Result {
	return &Result{Kind: KindVision, Vision: &VisionResult{ImageURL: imageURL, Analysis: analysis}}
}

func NewTranslationResult(original, translated string) *Result {
	return &Result{Kind: KindTranslation, Translation: &TranslationResult{Original: original, Translated: translated}}
}

func NewSearchResult(items []SearchItem) *Result {
	return &Result{Kind: KindSearch, Search: &SearchResult{Items: items}}
}

func NewWeatherResult(w WeatherResult) *Result {
	return &Result{Kind: KindWeather, Weather: &w}
}

func NewQRResult(imageURL, encodedData string) *Result {
	return &Result{Kind: KindQR, QR: &QRResult{ImageURL: imageURL, EncodedData: encodedData}}
}

func NewRawResult(payload string) *Result {
	return &Result{Kind: KindRaw, Raw: &RawResult{Payload: payload}}
}
