package ai

import (
	"fmt"

	"lpservice/internal/plate"
	"lpservice/internal/recognition"
	"lpservice/internal/vision"
)

// Reader reads plate text by detecting individual characters.
type Reader struct {
	network *network
	labels  []string
}

func (r *Reader) ReadText(region *vision.Frame) (recognition.PlateText, error) {
	predictions, err := r.network.predict(region)
	if err != nil {
		return recognition.Unreadable, err
	}

	chars := make([]plate.Char, 0, len(predictions))
	for _, p := range predictions {
		if p.Class >= len(r.labels) {
			return recognition.Unreadable, fmt.Errorf("OCR class %d has no label", p.Class)
		}
		chars = append(chars, plate.Char{
			CenterX: float64(p.Rect.Min.X+p.Rect.Max.X) / 2,
			CenterY: float64(p.Rect.Min.Y+p.Rect.Max.Y) / 2,
			Label:   r.labels[p.Class],
		})
	}
	return recognition.PlateText(plate.Normalize(plate.Assemble(chars))), nil
}

func (r *Reader) Close() error {
	return r.network.Close()
}
