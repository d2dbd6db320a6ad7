// Package ai runs the plate detector and the character OCR model on OpenCV's
// DNN module. Both are YOLOv5 networks exported to ONNX.
package ai

import (
	"errors"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"lpservice/internal/vision"
	"lpservice/internal/yolo"
)

// network is a loaded YOLOv5 model together with its decoding settings.
type network struct {
	net     gocv.Net
	decoder yolo.Decoder
	nms     float32
}

func loadNetwork(path string, inputSize int, confidence, nms float64) (*network, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", path)
	}

	net := gocv.ReadNet(path, "")
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("failed to load network from %s", path)
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if err := errors.Join(errBackend, errTarget); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target: %w", err)
	}

	return &network{
		net:     net,
		decoder: yolo.Decoder{InputSize: inputSize, Threshold: float32(confidence)},
		nms:     float32(nms),
	}, nil
}

// predict runs the network on frame and returns the predictions that survive
// thresholding and non-maximum suppression, in frame pixels.
func (n *network) predict(frame *vision.Frame) ([]yolo.Prediction, error) {
	size := n.decoder.InputSize
	blob := gocv.BlobFromImage(frame.Mat(), 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	if err := n.net.SetInput(blob, ""); err != nil {
		return nil, fmt.Errorf("failed to set network input: %w", err)
	}
	output := n.net.Forward("")
	defer output.Close()

	// output is [1, rows, 5+classes]
	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	predictions, err := n.decoder.Decode(data, dims[2], frame.Width(), frame.Height())
	if err != nil {
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, nil
	}

	rects, scores := yolo.Split(predictions)
	kept := gocv.NMSBoxes(rects, scores, n.decoder.Threshold, n.nms)
	result := make([]yolo.Prediction, 0, len(kept))
	for _, i := range kept {
		result = append(result, predictions[i])
	}
	return result, nil
}

func (n *network) Close() error {
	return n.net.Close()
}
