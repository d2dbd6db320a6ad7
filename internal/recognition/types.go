// Package recognition turns a decoded frame into a single license plate
// reading. It owns the model registry, the result selection policy and the
// recognition entry points; the models themselves are supplied by callers
// through the Detector and TextReader interfaces.
package recognition

import (
	"iter"

	"lpservice/internal/apperr"
)

// FullFrameConfidence is reported when no plate was localized and the text
// was read from the whole frame.
const FullFrameConfidence = 0.5

// BoundingBox is a detected plate region in image pixel coordinates.
type BoundingBox struct {
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
}

// PlateText is a normalized plate string. The zero value is Unreadable.
type PlateText string

// Unreadable is returned by a TextReader when a region holds no usable text.
const Unreadable PlateText = ""

func (t PlateText) Readable() bool {
	return t != Unreadable
}

// Frame is the view of a decoded image the pipeline needs. Crop returns a new
// frame the caller must Close.
type Frame[F any] interface {
	Crop(box BoundingBox) (F, error)
	Close() error
}

// Detector finds candidate plate regions. Inference must be complete when
// Detect returns; the sequence only yields already computed boxes and is
// consumed once.
type Detector[F any] interface {
	Detect(frame F) (iter.Seq[BoundingBox], error)
}

// TextReader reads plate text from a region. It returns Unreadable, not an
// error, when the region simply holds no plate text.
type TextReader[F any] interface {
	ReadText(region F) (PlateText, error)
}

// PlateCandidate pairs a detected region with its text extraction attempt.
type PlateCandidate struct {
	Box  BoundingBox
	Text PlateText
}

// Result is the outcome of one recognition call. Err is nil on success.
type Result struct {
	Plate      PlateText
	Confidence float64
	Err        *apperr.Error
}

func Success(plate PlateText, confidence float64) Result {
	return Result{Plate: plate, Confidence: confidence}
}

func Failure(kind apperr.Kind, message string) Result {
	return Result{Err: apperr.New(kind, message)}
}

func (r Result) OK() bool {
	return r.Err == nil
}
