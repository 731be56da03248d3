package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New("https://proxy.example.com")

	list := c.List()
	require.Len(t, list, 15)

	// Insertion order is preserved, text models first.
	assert.Equal(t, "chatgpt", list[0].ID)
	assert.Equal(t, "qr", list[len(list)-1].ID)

	// Relative endpoints are resolved against the base URL.
	d, ok := c.ByID("chatgpt")
	require.True(t, ok)
	assert.Equal(t, "https://proxy.example.com/integrations/chat-gpt/conversationgpt4", d.Endpoint)
}

func TestNew_TrailingSlashBase(t *testing.T) {
	c := New("https://proxy.example.com/")

	d, ok := c.ByID("weather")
	require.True(t, ok)
	assert.Equal(t, "https://proxy.example.com/integrations/weather-by-city/weather/", d.Endpoint)
}

func TestNew_EmptyBaseKeepsEndpoints(t *testing.T) {
	c := New("")

	d, ok := c.ByID("qr")
	require.True(t, ok)
	assert.Equal(t, "/integrations/qr-code/generatebasicbase64", d.Endpoint)
}

func TestList_ReturnsCopy(t *testing.T) {
	c := New("")

	list := c.List()
	list[0].Name = "mutated"

	fresh := c.List()
	assert.Equal(t, "ChatGPT", fresh[0].Name)
}

func TestByID_Unknown(t *testing.T) {
	c := New("")

	_, ok := c.ByID("nope")
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	c := New("")

	tests := []struct {
		name     string
		term     string
		category string
		wantIDs  []string
	}{
		{
			name:     "empty term and all category returns everything",
			term:     "",
			category: CategoryFilterAll,
			wantIDs:  []string{"chatgpt", "gemini", "claude", "dalle", "stable", "vision", "translate", "search", "imagesearch", "places", "business", "products", "scraping", "weather", "qr"},
		},
		{
			name:     "empty category behaves like all",
			term:     "translation",
			category: "",
			wantIDs:  []string{"translate"},
		},
		{
			name:     "term matches name case-insensitively",
			term:     "DALL",
			category: CategoryFilterAll,
			wantIDs:  []string{"dalle"},
		},
		{
			name:     "term matches description",
			term:     "weather information",
			category: CategoryFilterAll,
			wantIDs:  []string{"weather"},
		},
		{
			name:     "category narrows to members",
			term:     "",
			category: string(CategoryImage),
			wantIDs:  []string{"dalle", "stable"},
		},
		{
			name:     "term and category combine",
			term:     "search",
			category: string(CategorySearch),
			wantIDs:  []string{"search", "imagesearch", "products"},
		},
		{
			name:     "no match yields empty",
			term:     "zzzzz",
			category: CategoryFilterAll,
			wantIDs:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Filter(tt.term, tt.category)

			var ids []string
			for _, d := range got {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCategories_CoverAllDescriptorCategories(t *testing.T) {
	c := New("")
	for _, d := range c.List() {
		_, ok := Categories[d.Category]
		assert.True(t, ok, "category %q of %q has no display metadata", d.Category, d.ID)
	}
}
