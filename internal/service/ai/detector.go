package ai

import (
	"iter"
	"slices"

	"lpservice/internal/recognition"
	"lpservice/internal/vision"
)

// Detector localizes license plates in a frame.
type Detector struct {
	network *network
}

// Detect runs the detector to completion and yields the surviving boxes.
func (d *Detector) Detect(frame *vision.Frame) (iter.Seq[recognition.BoundingBox], error) {
	predictions, err := d.network.predict(frame)
	if err != nil {
		return nil, err
	}

	boxes := make([]recognition.BoundingBox, 0, len(predictions))
	for _, p := range predictions {
		boxes = append(boxes, recognition.BoundingBox{
			X:          p.Rect.Min.X,
			Y:          p.Rect.Min.Y,
			Width:      p.Rect.Dx(),
			Height:     p.Rect.Dy(),
			Confidence: float64(p.Score),
		})
	}
	return slices.Values(boxes), nil
}

func (d *Detector) Close() error {
	return d.network.Close()
}
