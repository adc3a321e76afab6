package assets

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Raster payloads are stored as data URIs so records stay a single string
// column regardless of shape.

// EncodeDataURI wraps raw image bytes as a data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI unwraps a data URI into its mime type and raw bytes.
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI: missing payload")
	}
	mimeType, _, _ = strings.Cut(meta, ";")
	if !strings.Contains(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported data URI encoding")
	}
	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI payload: %w", err)
	}
	return mimeType, data, nil
}
