package dispatch

import (
	"net/http"
	"testing"

	"modelhub/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(id string, category catalog.Category, endpoint string) *catalog.Descriptor {
	return &catalog.Descriptor{ID: id, Name: id, Category: category, Endpoint: endpoint}
}

func TestBuildRequest_Text(t *testing.T) {
	d := descriptor("chatgpt", catalog.CategoryText, "https://proxy/chat")

	spec, err := BuildRequest(d, "hello there")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, spec.Method)
	assert.Equal(t, "https://proxy/chat", spec.URL)
	assert.Equal(t, "application/json", spec.Header.Get("Content-Type"))
	assert.Equal(t, BodyJSON, spec.BodyKind)

	var body chatBody
	require.NoError(t, json.Unmarshal(spec.Body, &body))
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, "hello there", body.Messages[0].Content)
}

func TestBuildRequest_Vision(t *testing.T) {
	d := descriptor("vision", catalog.CategoryVision, "https://proxy/vision")

	spec, err := BuildRequest(d, "data:image/png;base64,AAAA")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, spec.Method)
	assert.Equal(t, BodyJSON, spec.BodyKind)

	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(spec.Body, &body))
	require.Len(t, body.Messages, 1)
	require.Len(t, body.Messages[0].Content, 2)

	assert.Equal(t, "text", body.Messages[0].Content[0].Type)
	assert.Equal(t, visionPrompt, body.Messages[0].Content[0].Text)
	assert.Equal(t, "image_url", body.Messages[0].Content[1].Type)
	assert.Equal(t, "data:image/png;base64,AAAA", body.Messages[0].Content[1].ImageURL.URL)
}

func TestBuildRequest_Image(t *testing.T) {
	d := descriptor("dalle", catalog.CategoryImage, "https://proxy/image")

	spec, err := BuildRequest(d, "a red fox")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, spec.Method)
	assert.Equal(t, "https://proxy/image?prompt=a+red+fox", spec.URL)
	assert.Equal(t, BodyNone, spec.BodyKind)
	assert.Nil(t, spec.Body)
}

func TestBuildRequest_Search(t *testing.T) {
	d := descriptor("search", catalog.CategorySearch, "https://proxy/search")

	spec, err := BuildRequest(d, "golang & json")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, spec.Method)
	assert.Equal(t, "https://proxy/search?q=golang+%26+json", spec.URL)
	assert.Equal(t, BodyNone, spec.BodyKind)
}

func TestBuildRequest_Translate(t *testing.T) {
	d := descriptor("translate", catalog.CategoryLanguage, "https://proxy/translate")

	spec, err := BuildRequest(d, "good morning")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, spec.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", spec.Header.Get("Content-Type"))
	assert.Equal(t, BodyForm, spec.BodyKind)
	assert.Equal(t, "q=good+morning&target=es", string(spec.Body))
}

func TestBuildRequest_WeatherOverridesCategory(t *testing.T) {
	// Weather is utility, which has no category builder; only the ID
	// override makes it routable.
	d := descriptor("weather", catalog.CategoryUtility, "https://proxy/weather/")

	spec, err := BuildRequest(d, "San José")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, spec.Method)
	assert.Equal(t, "https://proxy/weather/San%20Jos%C3%A9", spec.URL)
	assert.Equal(t, BodyNone, spec.BodyKind)
}

func TestBuildRequest_QROverridesCategory(t *testing.T) {
	d := descriptor("qr", catalog.CategoryUtility, "https://proxy/qr")

	spec, err := BuildRequest(d, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, spec.Method)
	assert.Equal(t, "https://proxy/qr?data=https%3A%2F%2Fexample.com", spec.URL)
}

func TestBuildRequest_UnroutableIsConfigurationError(t *testing.T) {
	// A utility capability without an ID override matches no table.
	d := descriptor("mystery", catalog.CategoryUtility, "https://proxy/mystery")

	spec, err := BuildRequest(d, "anything")
	assert.Nil(t, spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBuildRequest_EveryCatalogEntryIsRoutable(t *testing.T) {
	for _, d := range catalog.New("https://proxy").List() {
		d := d
		t.Run(d.ID, func(t *testing.T) {
			spec, err := BuildRequest(&d, "probe")
			require.NoError(t, err)
			require.NotNil(t, spec)

			// Exactly one body representation per spec.
			if spec.BodyKind == BodyNone {
				assert.Nil(t, spec.Body)
			} else {
				assert.NotEmpty(t, spec.Body)
			}
		})
	}
}

func TestIsOpaque(t *testing.T) {
	assert.True(t, IsOpaque(descriptor("dalle", catalog.CategoryImage, "")))
	assert.True(t, IsOpaque(descriptor("stable", catalog.CategoryImage, "")))
	assert.True(t, IsOpaque(descriptor("qr", catalog.CategoryUtility, "")))
	assert.False(t, IsOpaque(descriptor("chatgpt", catalog.CategoryText, "")))
	assert.False(t, IsOpaque(descriptor("weather", catalog.CategoryUtility, "")))
}
