package dto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultMimeType is assumed for payloads that do not say otherwise.
const DefaultMimeType = "image/jpeg"

// RecognizeRequest is the JSON body of POST /api/recognize. Image is either
// plain base64 or a data URL.
type RecognizeRequest struct {
	Image string `json:"image" validate:"required,datauri|base64"`
}

func (r *RecognizeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed on %q", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// Decode returns the image bytes and their MIME type.
func (r *RecognizeRequest) Decode() ([]byte, string, error) {
	payload, mimeType := r.Image, DefaultMimeType
	if header, data, ok := strings.Cut(payload, ","); ok {
		payload = data
		if rest, found := strings.CutPrefix(header, "data:"); found {
			if mt, _, _ := strings.Cut(rest, ";"); mt != "" {
				mimeType = mt
			}
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("image is empty")
	}
	return data, mimeType, nil
}

// ExtensionFor maps an image MIME type to a file extension.
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/bmp", "image/x-ms-bmp":
		return "bmp"
	}
	return "jpg"
}
