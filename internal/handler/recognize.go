package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"lpservice/internal/apperr"
	"lpservice/internal/config"
	"lpservice/internal/dto"
	"lpservice/internal/logger"
	"lpservice/internal/service"
)

// multipartOverhead is allowed on top of the file size limit for the rest of
// the multipart body.
const multipartOverhead = 1 << 20

// upload is an image received from the client.
type upload struct {
	data     []byte
	mimeType string
	filename string
	ext      string
}

// RecognizeHandler recognizes a plate in an uploaded image, sent either as a
// multipart "file" field or as JSON {"image": base64 or data URL}.
func RecognizeHandler(svc Service, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			writeError(w, logger, apperr.New(apperr.ServiceNotReady, "recognition service not ready"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize*2+multipartOverhead)

		img, message := readUpload(r, cfg)
		if message != "" {
			writeBadRequest(w, message)
			return
		}

		result := svc.RecognizeImage(r.Context(), img.data, img.ext)
		if !result.OK() {
			writeError(w, logger, result.Err)
			return
		}

		writeData(w, dto.RecognitionData{
			LicensePlate: string(result.Plate),
			Confidence:   result.Confidence,
			Timestamp:    time.Now(),
			ImageData:    service.DataURL(img.mimeType, img.data),
			ImageMeta: &dto.ImageMeta{
				MimeType: img.mimeType,
				Size:     len(img.data),
				Filename: img.filename,
			},
		})
	}
}

// readUpload extracts the image from r. A non-empty message means the request
// is rejected with it.
func readUpload(r *http.Request, cfg *config.Config) (upload, string) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		return readMultipart(r, cfg)
	case mediaType == "application/json":
		return readBase64(r, cfg)
	}
	return upload{}, "No image provided. Send multipart file or JSON with base64 image"
}

func readMultipart(r *http.Request, cfg *config.Config) (upload, string) {
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return upload{}, tooLarge(cfg)
		}
		return upload{}, "No image provided. Send multipart file or JSON with base64 image"
	}
	defer file.Close()

	if header.Filename == "" {
		return upload{}, "No file selected"
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !slices.Contains(cfg.AllowedExtensions, ext) {
		return upload{}, fmt.Sprintf("Invalid file type. Allowed: %s", strings.Join(cfg.AllowedExtensions, ", "))
	}

	data, err := io.ReadAll(io.LimitReader(file, cfg.MaxUploadSize+1))
	if err != nil {
		return upload{}, "Could not read uploaded file"
	}
	if int64(len(data)) > cfg.MaxUploadSize {
		return upload{}, tooLarge(cfg)
	}
	if len(data) == 0 {
		return upload{}, "Uploaded file is empty"
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = dto.DefaultMimeType
	}
	return upload{data: data, mimeType: mimeType, filename: header.Filename, ext: ext}, ""
}

func readBase64(r *http.Request, cfg *config.Config) (upload, string) {
	var req dto.RecognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return upload{}, tooLarge(cfg)
		}
		return upload{}, "Invalid JSON body"
	}
	if req.Image == "" {
		return upload{}, "No image provided. Send multipart file or JSON with base64 image"
	}
	if err := req.Validate(); err != nil {
		return upload{}, "Invalid base64 image: " + err.Error()
	}

	data, mimeType, err := req.Decode()
	if err != nil {
		return upload{}, "Invalid base64 image: " + err.Error()
	}
	if int64(len(data)) > cfg.MaxUploadSize {
		return upload{}, tooLarge(cfg)
	}
	return upload{data: data, mimeType: mimeType, filename: "camera_capture.jpg", ext: dto.ExtensionFor(mimeType)}, ""
}

func tooLarge(cfg *config.Config) string {
	return fmt.Sprintf("File too large (max %dMB)", cfg.MaxUploadSize>>20)
}

// RecognizeCameraHandler recognizes a plate in a fresh frame from the
// active camera session.
func RecognizeCameraHandler(svc Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.RecognizeCamera(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if !out.Result.OK() {
			writeError(w, logger, out.Result.Err)
			return
		}

		data := dto.RecognitionData{
			LicensePlate: string(out.Result.Plate),
			Confidence:   out.Result.Confidence,
			Timestamp:    out.Snapshot.At,
		}
		if len(out.Snapshot.JPEG) > 0 {
			data.ImageData = service.DataURL("image/jpeg", out.Snapshot.JPEG)
		}
		writeData(w, data)
	}
}
