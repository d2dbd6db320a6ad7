package recognition

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const fullFrameID = "full"

// testFrame stands in for a decoded image. Crops are identified by their
// box origin so readers can be scripted per box.
type testFrame struct {
	id   string
	open *atomic.Int32
}

func newTestFrame() *testFrame {
	return &testFrame{id: fullFrameID, open: &atomic.Int32{}}
}

func (f *testFrame) Crop(box BoundingBox) (*testFrame, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return nil, errors.New("empty region")
	}
	f.open.Add(1)
	return &testFrame{id: regionID(box), open: f.open}, nil
}

func (f *testFrame) Close() error {
	if f.id != fullFrameID {
		f.open.Add(-1)
	}
	return nil
}

func regionID(box BoundingBox) string {
	return fmt.Sprintf("%d,%d", box.X, box.Y)
}

func box(x int, confidence float64) BoundingBox {
	return BoundingBox{X: x, Y: 0, Width: 100, Height: 40, Confidence: confidence}
}

type scriptedDetector struct {
	boxes []BoundingBox
	err   error
}

func (d *scriptedDetector) Detect(*testFrame) (iter.Seq[BoundingBox], error) {
	if d.err != nil {
		return nil, d.err
	}
	return slices.Values(d.boxes), nil
}

// scriptedReader returns texts keyed by region id; anything missing is unreadable.
type scriptedReader struct {
	texts map[string]PlateText
	err   error
	panic bool

	mu    sync.Mutex
	calls []string
}

func (r *scriptedReader) ReadText(region *testFrame) (PlateText, error) {
	r.mu.Lock()
	r.calls = append(r.calls, region.id)
	r.mu.Unlock()

	if r.panic {
		panic("reader exploded")
	}
	if r.err != nil {
		return Unreadable, r.err
	}
	return r.texts[region.id], nil
}

// exclusiveDetector fails if two Detect calls ever overlap.
type exclusiveDetector struct {
	inFlight atomic.Int32
	overlap  atomic.Bool
	boxes    []BoundingBox
}

func (d *exclusiveDetector) Detect(*testFrame) (iter.Seq[BoundingBox], error) {
	if d.inFlight.Add(1) > 1 {
		d.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	d.inFlight.Add(-1)
	return slices.Values(d.boxes), nil
}
