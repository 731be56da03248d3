package dispatch

import (
	"encoding/base64"
	"testing"

	"modelhub/pkg/catalog"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonPayload(s string) Payload {
	return Payload{JSON: []byte(s)}
}

func TestInterpret_Chat(t *testing.T) {
	d := descriptor("chatgpt", catalog.CategoryText, "")
	p := jsonPayload(`{"choices":[{"message":{"content":"Hi, how can I help?"}}]}`)

	result, err := Interpret(d, "hello", p)
	require.NoError(t, err)

	assert.Equal(t, KindText, result.Kind)
	require.NotNil(t, result.Text)
	assert.Equal(t, "Hi, how can I help?", result.Text.Content)
}

func TestInterpret_Chat_FirstChoiceWins(t *testing.T) {
	d := descriptor("gemini", catalog.CategoryText, "")
	p := jsonPayload(`{"choices":[{"message":{"content":"first"}},{"message":{"content":"second"}}]}`)

	result, err := Interpret(d, "hello", p)
	require.NoError(t, err)
	assert.Equal(t, "first", result.Text.Content)
}

func TestInterpret_Chat_NoChoices(t *testing.T) {
	d := descriptor("chatgpt", catalog.CategoryText, "")

	for _, body := range []string{`{}`, `{"choices":[]}`} {
		result, err := Interpret(d, "hello", jsonPayload(body))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrDecode)
	}
}

func TestInterpret_Vision_CarriesInputImage(t *testing.T) {
	d := descriptor("vision", catalog.CategoryVision, "")
	input := "data:image/png;base64,AAAA"
	p := jsonPayload(`{"choices":[{"message":{"content":"A fox on a fence."}}]}`)

	result, err := Interpret(d, input, p)
	require.NoError(t, err)

	assert.Equal(t, KindVision, result.Kind)
	require.NotNil(t, result.Vision)
	assert.Equal(t, input, result.Vision.ImageURL)
	assert.Equal(t, "A fox on a fence.", result.Vision.Analysis)
}

func TestInterpret_Image_JSONCollection(t *testing.T) {
	d := descriptor("dalle", catalog.CategoryImage, "")
	p := Payload{Blob: `{"data":["https://cdn/img1.png","https://cdn/img2.png"]}`}

	result, err := Interpret(d, "a red fox", p)
	require.NoError(t, err)

	assert.Equal(t, KindImage, result.Kind)
	assert.Equal(t, "https://cdn/img1.png", result.Image.ImageURL)
}

func TestInterpret_Image_BareReference(t *testing.T) {
	d := descriptor("stable", catalog.CategoryImage, "")
	p := Payload{Blob: "https://cdn/generated.png"}

	result, err := Interpret(d, "a red fox", p)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/generated.png", result.Image.ImageURL)
}

func TestInterpret_Image_EmptyCollection(t *testing.T) {
	d := descriptor("dalle", catalog.CategoryImage, "")

	result, err := Interpret(d, "a red fox", Payload{Blob: `{"data":[]}`})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestInterpret_Image_EmptyBody(t *testing.T) {
	d := descriptor("dalle", catalog.CategoryImage, "")

	result, err := Interpret(d, "a red fox", Payload{Blob: "  "})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestInterpret_Translation(t *testing.T) {
	d := descriptor("translate", catalog.CategoryLanguage, "")
	p := jsonPayload(`{"data":{"translations":[{"translatedText":"buenos días"}]}}`)

	result, err := Interpret(d, "good morning", p)
	require.NoError(t, err)

	assert.Equal(t, KindTranslation, result.Kind)
	assert.Equal(t, "good morning", result.Translation.Original)
	assert.Equal(t, "buenos días", result.Translation.Translated)
}

func TestInterpret_Translation_NoTranslations(t *testing.T) {
	d := descriptor("translate", catalog.CategoryLanguage, "")

	result, err := Interpret(d, "good morning", jsonPayload(`{"data":{"translations":[]}}`))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestInterpret_Search(t *testing.T) {
	d := descriptor("search", catalog.CategorySearch, "")
	p := jsonPayload(`{"items":[
		{"title":"Go","link":"https://go.dev","snippet":"The Go programming language","displayLink":"go.dev"},
		{"title":"Go wiki","link":"https://go.dev/wiki","snippet":"Community wiki","displayLink":"go.dev"}
	]}`)

	result, err := Interpret(d, "golang", p)
	require.NoError(t, err)

	assert.Equal(t, KindSearch, result.Kind)
	require.Len(t, result.Search.Items, 2)
	assert.Equal(t, "Go", result.Search.Items[0].Title)
	assert.Equal(t, "https://go.dev", result.Search.Items[0].Link)
}

func TestInterpret_Search_ZeroHitsIsNotAnError(t *testing.T) {
	d := descriptor("search", catalog.CategorySearch, "")

	// Both an empty and a missing items collection are valid zero-hit
	// results.
	for _, body := range []string{`{"items":[]}`, `{}`} {
		result, err := Interpret(d, "zzzzz", jsonPayload(body))
		require.NoError(t, err)
		assert.Equal(t, KindSearch, result.Kind)
		assert.NotNil(t, result.Search.Items)
		assert.Empty(t, result.Search.Items)
	}
}

func TestInterpret_Weather(t *testing.T) {
	d := descriptor("weather", catalog.CategoryUtility, "")
	p := jsonPayload(`{
		"location":{"name":"Paris","region":"Ile-de-France"},
		"current":{
			"temp_c":21.5,
			"condition":{"text":"Partly cloudy"},
			"humidity":60,
			"wind_kph":13.0,
			"feelslike_c":20.2,
			"pressure_mb":1015.0
		}
	}`)

	result, err := Interpret(d, "Paris", p)
	require.NoError(t, err)

	assert.Equal(t, KindWeather, result.Kind)
	w := result.Weather
	assert.Equal(t, "Paris", w.Location)
	assert.Equal(t, "Ile-de-France", w.Region)
	assert.Equal(t, 21.5, w.TemperatureC)
	assert.Equal(t, "Partly cloudy", w.Condition)
	assert.Equal(t, 60, w.Humidity)
	assert.Equal(t, 13.0, w.WindKph)
	assert.Equal(t, 20.2, w.FeelsLikeC)
	assert.Equal(t, 1015.0, w.PressureMb)
}

func TestInterpret_Weather_MissingSections(t *testing.T) {
	d := descriptor("weather", catalog.CategoryUtility, "")

	for _, body := range []string{`{}`, `{"location":{"name":"Paris"}}`, `{"current":{"temp_c":1}}`} {
		result, err := Interpret(d, "Paris", jsonPayload(body))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrDecode)
	}
}

func TestInterpret_QR(t *testing.T) {
	d := descriptor("qr", catalog.CategoryUtility, "")

	// The endpoint answers with a base64-encoded PNG; a locally generated
	// QR code stands in for it.
	png, err := qrcode.Encode("https://example.com", qrcode.Medium, 128)
	require.NoError(t, err)
	blob := base64.StdEncoding.EncodeToString(png)

	result, err := Interpret(d, "https://example.com", Payload{Blob: blob})
	require.NoError(t, err)

	assert.Equal(t, KindQR, result.Kind)
	assert.Equal(t, blob, result.QR.ImageURL)
	assert.Equal(t, "https://example.com", result.QR.EncodedData)
}

func TestInterpret_QR_EmptyBody(t *testing.T) {
	d := descriptor("qr", catalog.CategoryUtility, "")

	result, err := Interpret(d, "data", Payload{Blob: ""})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestInterpret_UnknownFallsBackToRaw(t *testing.T) {
	d := descriptor("mystery", catalog.CategoryUtility, "")

	result, err := Interpret(d, "anything", jsonPayload(`{"whatever":true}`))
	require.NoError(t, err)
	assert.Equal(t, KindRaw, result.Kind)
	assert.Equal(t, `{"whatever":true}`, result.Raw.Payload)

	result, err = Interpret(d, "anything", Payload{Blob: "opaque"})
	require.NoError(t, err)
	assert.Equal(t, "opaque", result.Raw.Payload)
}

func TestResultSummary(t *testing.T) {
	assert.Equal(t, "hi", NewTextResult("hi").Summary())
	assert.Equal(t, "2 search results", NewSearchResult([]SearchItem{{}, {}}).Summary())
	assert.Contains(t, NewWeatherResult(WeatherResult{Location: "Paris", TemperatureC: 21.5, Condition: "Sunny"}).Summary(), "Paris")

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, NewTextResult(string(long)).Summary(), 103)
}
