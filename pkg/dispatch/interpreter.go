package dispatch

import (
	"fmt"
	"strings"

	"modelhub/pkg/catalog"
)

// InterpretFunc maps a successful payload to a normalized result. The
// original input travels along because some variants carry it through
// (vision image, translation original, QR encoded data). Interpreters
// are pure: no I/O, no state.
type InterpretFunc func(input string, p Payload) (*Result, error)

// categoryInterpreters mirrors the keying strategy of the request
// builder table. Utility is resolved via capabilityInterpreters.
var categoryInterpreters = map[catalog.Category]InterpretFunc{
	catalog.CategoryText:     interpretChat,
	catalog.CategoryImage:    interpretImage,
	catalog.CategoryVision:   interpretVision,
	catalog.CategoryLanguage: interpretTranslation,
	catalog.CategorySearch:   interpretSearch,
}

var capabilityInterpreters = map[string]InterpretFunc{
	"weather": interpretWeather,
	"qr":      interpretQR,
}

// Interpret converts the raw payload of a successful invocation into the
// normalized result variant for the capability. Payloads that miss the
// expected fields yield ErrDecode, never a partial result. A descriptor
// unknown to both tables falls back to an opaque raw wrap: that path is
// unreachable through the catalog but must not crash if hit.
func Interpret(d *catalog.Descriptor, input string, p Payload) (*Result, error) {
	if interpret, ok := capabilityInterpreters[d.ID]; ok {
		return interpret(input, p)
	}
	if interpret, ok := categoryInterpreters[d.Category]; ok {
		return interpret(input, p)
	}
	return interpretRaw(input, p)
}

// chatPayload is the chat-completion response schema shared by the text
// and vision categories.
type chatPayload struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func extractChatContent(p Payload) (string, error) {
	var parsed chatPayload
	if err := json.Unmarshal(p.JSON, &parsed); err != nil {
		return "", fmt.Errorf("chat payload: %v: %w", err, ErrDecode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat payload has no choices: %w", ErrDecode)
	}
	return parsed.Choices[0].Message.Content, nil
}

func interpretChat(_ string, p Payload) (*Result, error) {
	content, err := extractChatContent(p)
	if err != nil {
		return nil, err
	}
	return NewTextResult(content), nil
}

// interpretVision extracts the analysis like a chat response and carries
// the original input image reference through for side-by-side display.
func interpretVision(input string, p Payload) (*Result, error) {
	analysis, err := extractChatContent(p)
	if err != nil {
		return nil, err
	}
	return NewVisionResult(input, analysis), nil
}

// imagePayload is the image-reference collection some image endpoints
// return instead of a bare URL/blob body.
type imagePayload struct {
	Data []string `json:"data"`
}

// interpretImage handles both body styles of the image category: a JSON
// collection of image references (first element wins) and a bare opaque
// reference (URL or base64 blob).
func interpretImage(_ string, p Payload) (*Result, error) {
	blob := strings.TrimSpace(p.Blob)
	if blob == "" {
		return nil, fmt.Errorf("image payload is empty: %w", ErrDecode)
	}

	if strings.HasPrefix(blob, "{") {
		var parsed imagePayload
		if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
			return nil, fmt.Errorf("image payload: %v: %w", err, ErrDecode)
		}
		if len(parsed.Data) == 0 {
			return nil, fmt.Errorf("image payload has no data: %w", ErrDecode)
		}
		return NewImageResult(parsed.Data[0]), nil
	}

	return NewImageResult(blob), nil
}

// translationPayload is the translation response schema.
type translationPayload struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

func interpretTranslation(input string, p Payload) (*Result, error) {
	var parsed translationPayload
	if err := json.Unmarshal(p.JSON, &parsed); err != nil {
		return nil, fmt.Errorf("translation payload: %v: %w", err, ErrDecode)
	}
	if len(parsed.Data.Translations) == 0 {
		return nil, fmt.Errorf("translation payload has no translations: %w", ErrDecode)
	}
	return NewTranslationResult(input, parsed.Data.Translations[0].TranslatedText), nil
}

// searchPayload is the search-family response schema. A missing or empty
// items collection is a valid zero-hit result.
type searchPayload struct {
	Items []SearchItem `json:"items"`
}

func interpretSearch(_ string, p Payload) (*Result, error) {
	var parsed searchPayload
	if err := json.Unmarshal(p.JSON, &parsed); err != nil {
		return nil, fmt.Errorf("search payload: %v: %w", err, ErrDecode)
	}
	if parsed.Items == nil {
		parsed.Items = []SearchItem{}
	}
	return NewSearchResult(parsed.Items), nil
}

// weatherPayload is the nested weather response schema. Location and
// current are pointers so a missing section is distinguishable from a
// zero-valued one.
type weatherPayload struct {
	Location *struct {
		Name   string `json:"name"`
		Region string `json:"region"`
	} `json:"location"`
	Current *struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
		Humidity   int     `json:"humidity"`
		WindKph    float64 `json:"wind_kph"`
		FeelslikeC float64 `json:"feelslike_c"`
		PressureMb float64 `json:"pressure_mb"`
	} `json:"current"`
}

func interpretWeather(_ string, p Payload) (*Result, error) {
	var parsed weatherPayload
	if err := json.Unmarshal(p.JSON, &parsed); err != nil {
		return nil, fmt.Errorf("weather payload: %v: %w", err, ErrDecode)
	}
	if parsed.Location == nil || parsed.Current == nil {
		return nil, fmt.Errorf("weather payload missing location or current: %w", ErrDecode)
	}
	return NewWeatherResult(WeatherResult{
		Location:     parsed.Location.Name,
		Region:       parsed.Location.Region,
		TemperatureC: parsed.Current.TempC,
		Condition:    parsed.Current.Condition.Text,
		Humidity:     parsed.Current.Humidity,
		WindKph:      parsed.Current.WindKph,
		FeelsLikeC:   parsed.Current.FeelslikeC,
		PressureMb:   parsed.Current.PressureMb,
	}), nil
}

// interpretQR treats the payload itself as the image reference and pairs
// it with the data the user asked to encode.
func interpretQR(input string, p Payload) (*Result, error) {
	blob := strings.TrimSpace(p.Blob)
	if blob == "" {
		return nil, fmt.Errorf("qr payload is empty: %w", ErrDecode)
	}
	return NewQRResult(blob, input), nil
}

// interpretRaw wraps a payload no interpreter claims for opaque display.
func interpretRaw(_ string, p Payload) (*Result, error) {
	if len(p.JSON) > 0 {
		return NewRawResult(string(p.JSON)), nil
	}
	return NewRawResult(p.Blob), nil
}
