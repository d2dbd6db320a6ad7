// Package yolo decodes the raw output tensor of a YOLOv5 network.
//
// Each output row is laid out as [cx, cy, w, h, objectness, class scores...]
// in network input pixels. The input is expected to be a plain resize of the
// source image to a square of InputSize pixels.
package yolo

import (
	"fmt"
	"image"
)

// rowHeader is the number of values in front of the class scores.
const rowHeader = 5

// Prediction is a single decoded detection in source image pixels.
type Prediction struct {
	Rect  image.Rectangle
	Score float32
	Class int
}

type Decoder struct {
	InputSize int
	Threshold float32
}

// Decode reads predictions out of data, which holds rows of rowLen values.
// Rows scoring below the threshold are dropped. Boxes are scaled from the
// network input square back to a width x height image and clipped to it.
func (d Decoder) Decode(data []float32, rowLen, width, height int) ([]Prediction, error) {
	if rowLen <= rowHeader {
		return nil, fmt.Errorf("row length %d leaves no class scores", rowLen)
	}
	if len(data)%rowLen != 0 {
		return nil, fmt.Errorf("output of %d values is not a multiple of row length %d", len(data), rowLen)
	}
	if d.InputSize <= 0 {
		return nil, fmt.Errorf("invalid input size %d", d.InputSize)
	}

	scaleX := float32(width) / float32(d.InputSize)
	scaleY := float32(height) / float32(d.InputSize)
	bounds := image.Rect(0, 0, width, height)

	var predictions []Prediction
	for off := 0; off+rowLen <= len(data); off += rowLen {
		row := data[off : off+rowLen]

		objectness := row[4]
		if objectness < d.Threshold {
			continue
		}
		class, classScore := argmax(row[rowHeader:])
		score := objectness * classScore
		if score < d.Threshold {
			continue
		}

		cx, cy, w, h := row[0]*scaleX, row[1]*scaleY, row[2]*scaleX, row[3]*scaleY
		rect := image.Rect(
			int(cx-w/2), int(cy-h/2),
			int(cx+w/2), int(cy+h/2),
		).Intersect(bounds)
		if rect.Empty() {
			continue
		}

		predictions = append(predictions, Prediction{Rect: rect, Score: score, Class: class})
	}
	return predictions, nil
}

func argmax(scores []float32) (int, float32) {
	best, bestScore := 0, scores[0]
	for i, s := range scores[1:] {
		if s > bestScore {
			best, bestScore = i+1, s
		}
	}
	return best, bestScore
}

// Split returns the rectangles and scores of predictions as parallel slices,
// the shape non-maximum suppression routines take.
func Split(predictions []Prediction) ([]image.Rectangle, []float32) {
	rects := make([]image.Rectangle, len(predictions))
	scores := make([]float32, len(predictions))
	for i, p := range predictions {
		rects[i] = p.Rect
		scores[i] = p.Score
	}
	return rects, scores
}
