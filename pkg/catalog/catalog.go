package catalog

import (
	"strings"
)

// Category identifies the wire-shape family a capability belongs to.
// Request building and response interpretation are keyed on this value.
type Category string

const (
	CategoryText     Category = "text"
	CategoryImage    Category = "image"
	CategoryVision   Category = "vision"
	CategoryLanguage Category = "language"
	CategorySearch   Category = "search"
	CategoryUtility  Category = "utility"
)

// CategoryFilterAll is the wildcard value accepted by Filter.
const CategoryFilterAll = "all"

// CategoryInfo carries the display metadata for a category.
// It is irrelevant to dispatch but required by catalog consumers (UI).
type CategoryInfo struct {
	Label  string `json:"label"`
	Accent string `json:"accent"` // Hex color used by the frontend badge
}

// Categories maps every known category to its display metadata.
var Categories = map[Category]CategoryInfo{
	CategoryText:     {Label: "Text Generation", Accent: "#4A90E2"},
	CategoryImage:    {Label: "Image Generation", Accent: "#50E3C2"},
	CategoryVision:   {Label: "Vision", Accent: "#F5A623"},
	CategoryLanguage: {Label: "Language", Accent: "#BD10E0"},
	CategorySearch:   {Label: "Search & Data", Accent: "#7ED321"},
	CategoryUtility:  {Label: "Utility", Accent: "#9013FE"},
}

// Descriptor describes one externally hosted capability.
// Descriptors are created once at startup and never mutated.
type Descriptor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Endpoint    string   `json:"endpoint"`
}

// builtins is the static capability table of the hub. Order matters:
// List and Filter preserve it.
var builtins = []Descriptor{
	{ID: "chatgpt", Name: "ChatGPT", Category: CategoryText, Description: "Advanced language model for text generation", Endpoint: "/integrations/chat-gpt/conversationgpt4"},
	{ID: "gemini", Name: "Google Gemini 1.5", Category: CategoryText, Description: "Advanced text and code generation model", Endpoint: "/integrations/google-gemini-1-5/"},
	{ID: "claude", Name: "Claude Sonnet 3.5", Category: CategoryText, Description: "Sophisticated text analysis model", Endpoint: "/integrations/anthropic-claude-sonnet-3-5/"},
	{ID: "dalle", Name: "DALL·E 3", Category: CategoryImage, Description: "Realistic image generation", Endpoint: "/integrations/dall-e-3/"},
	{ID: "stable", Name: "Stable Diffusion V3", Category: CategoryImage, Description: "Artistic image generation", Endpoint: "/integrations/stable-diffusion-v-3/"},
	{ID: "vision", Name: "GPT Vision", Category: CategoryVision, Description: "Image analysis and interpretation", Endpoint: "/integrations/gpt-vision/"},
	{ID: "translate", Name: "Google Translate", Category: CategoryLanguage, Description: "Language translation service", Endpoint: "/integrations/google-translate/language/translate/v2"},
	{ID: "search", Name: "Google Search", Category: CategorySearch, Description: "Web search capabilities", Endpoint: "/integrations/google-search/search"},
	{ID: "imagesearch", Name: "Image Search", Category: CategorySearch, Description: "Image search service", Endpoint: "/integrations/image-search/imagesearch"},
	{ID: "places", Name: "Place Autocomplete", Category: CategorySearch, Description: "Location data and suggestions", Endpoint: "/integrations/google-place-autocomplete/autocomplete/json"},
	{ID: "business", Name: "Business Data", Category: CategorySearch, Description: "Local business information", Endpoint: "/integrations/local-business-data/search"},
	{ID: "products", Name: "Product Search", Category: CategorySearch, Description: "Product information and search", Endpoint: "/integrations/product-search/search"},
	{ID: "scraping", Name: "Web Scraping", Category: CategorySearch, Description: "Web data extraction", Endpoint: "/integrations/web-scraping/post"},
	{ID: "weather", Name: "Weather", Category: CategoryUtility, Description: "Weather information by city", Endpoint: "/integrations/weather-by-city/weather/"},
	{ID: "qr", Name: "QR Code", Category: CategoryUtility, Description: "QR code generation", Endpoint: "/integrations/qr-code/generatebasicbase64"},
}

// Catalog is the immutable registry of capability descriptors.
type Catalog struct {
	entries []Descriptor
	byID    map[string]*Descriptor
}

// New builds the catalog from the builtin table. Relative endpoints are
// resolved against baseURL so the dispatch layer always sees a full URL.
// An empty baseURL keeps the endpoints as-is (useful in tests).
func New(baseURL string) *Catalog {
	base := strings.TrimRight(baseURL, "/")

	c := &Catalog{
		entries: make([]Descriptor, len(builtins)),
		byID:    make(map[string]*Descriptor, len(builtins)),
	}
	for i, d := range builtins {
		if base != "" && strings.HasPrefix(d.Endpoint, "/") {
			d.Endpoint = base + d.Endpoint
		}
		c.entries[i] = d
		c.byID[d.ID] = &c.entries[i]
	}
	return c
}

// List returns all descriptors in insertion order.
func (c *Catalog) List() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByID looks up a descriptor by its unique capability ID.
func (c *Catalog) ByID(id string) (*Descriptor, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Filter returns the descriptors matching both conditions, preserving
// insertion order: the category filter ("all" matches everything) and a
// case-insensitive substring search over name and description. An empty
// term matches every descriptor.
func (c *Catalog) Filter(term string, category string) []Descriptor {
	needle := strings.ToLower(term)

	var out []Descriptor
	for _, d := range c.entries {
		if category != CategoryFilterAll && category != "" && string(d.Category) != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.Description), needle) {
			continue
		}
		out = append(out, d)
	}
	return out
}
