package utils

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// DetectMime analyzes a byte slice to determine its MIME type.
// It returns "application/octet-stream" if identification fails.
func DetectMime(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(data)
}

// BuildDataURI encodes raw bytes as a data-URI string, the form the
// vision capability expects its image input in.
func BuildDataURI(data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", DetectMime(data), base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI splits a data-URI string back into its MIME type and
// raw bytes. Used by channels that upload image results natively.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}

	mimeType, _, _ := strings.Cut(meta, ";")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	return mimeType, data, nil
}
