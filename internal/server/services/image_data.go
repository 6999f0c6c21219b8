package services

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
)

// decodeImage decodes base64 payload and checks that the bytes are a
// picture. It returns the bytes with their sniffed MIME type and extension.
func decodeImage(field, payload string) ([]byte, *mimetype.MIME, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, nil, validationError("%s must be base64 encoded", field)
	}
	if len(data) == 0 {
		return nil, nil, validationError("%s is empty", field)
	}
	if len(data) > common.MaxImageBytes {
		return nil, nil, validationError("%s exceeds %d bytes", field, common.MaxImageBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, nil, validationError("%s is not an image (detected %s)", field, mt.String())
	}
	return data, mt, nil
}
