package recognition

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpservice/internal/apperr"
	"lpservice/internal/logger"
)

func newTestPipeline(t *testing.T, detector Detector[*testFrame], reader TextReader[*testFrame], loader LoaderFunc[*testFrame]) *Pipeline[*testFrame] {
	t.Helper()
	registry := NewRegistry(func() (Models[*testFrame], error) {
		return Models[*testFrame]{Detector: detector, Reader: reader}, nil
	})
	require.NoError(t, registry.Load())
	if loader == nil {
		loader = func(string) (*testFrame, error) { return newTestFrame(), nil }
	}
	return NewPipeline(registry, loader, logger.Discard())
}

func TestPipeline_RecognizeConcreteScenario(t *testing.T) {
	boxes := []BoundingBox{box(10, 0.8), box(20, 0.9)}
	detector := &scriptedDetector{boxes: boxes}
	reader := &scriptedReader{texts: map[string]PlateText{regionID(boxes[0]): "51F-12345"}}
	pipeline := newTestPipeline(t, detector, reader, nil)

	result := pipeline.Recognize(context.Background(), newTestFrame())

	require.True(t, result.OK())
	assert.Equal(t, PlateText("51F-12345"), result.Plate)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestPipeline_NotReadyFailsFast(t *testing.T) {
	loads := 0
	registry := NewRegistry(func() (Models[*testFrame], error) {
		loads++
		return Models[*testFrame]{}, errors.New("model file not found")
	})
	require.Error(t, registry.Load())
	require.Error(t, registry.Load())
	assert.Equal(t, 1, loads)

	readerCalls := 0
	pipeline := NewPipeline(registry, func(string) (*testFrame, error) {
		readerCalls++
		return newTestFrame(), nil
	}, logger.Discard())

	assert.False(t, pipeline.Ready())

	result := pipeline.Recognize(context.Background(), newTestFrame())
	require.False(t, result.OK())
	assert.Equal(t, apperr.ServiceNotReady, result.Err.Kind)

	result = pipeline.RecognizeFromPath(context.Background(), "/tmp/plate.jpg")
	require.False(t, result.OK())
	assert.Equal(t, apperr.ServiceNotReady, result.Err.Kind)
	assert.Zero(t, readerCalls, "frames must not be decoded while not ready")
}

func TestRegistry_IncompleteModelsAreALoadFailure(t *testing.T) {
	registry := NewRegistry(func() (Models[*testFrame], error) {
		return Models[*testFrame]{Detector: &scriptedDetector{}}, nil
	})

	err := registry.Load()

	require.Error(t, err)
	assert.Equal(t, apperr.ServiceNotReady, apperr.KindOf(err))
	assert.False(t, registry.Ready())
}

func TestRegistry_CloseMakesItUnready(t *testing.T) {
	pipeline := newTestPipeline(t, &scriptedDetector{}, &scriptedReader{}, nil)

	require.NoError(t, pipeline.registry.Close())

	assert.False(t, pipeline.Ready())
	result := pipeline.Recognize(context.Background(), newTestFrame())
	assert.Equal(t, apperr.ServiceNotReady, result.Err.Kind)
}

func TestPipeline_RecognizeFromPath(t *testing.T) {
	t.Run("decoded frame is recognized and released", func(t *testing.T) {
		var loaded *testFrame
		reader := &scriptedReader{texts: map[string]PlateText{fullFrameID: "30A-99999"}}
		pipeline := newTestPipeline(t, &scriptedDetector{}, reader, func(path string) (*testFrame, error) {
			assert.Equal(t, "uploads/a.jpg", path)
			loaded = newTestFrame()
			return loaded, nil
		})

		result := pipeline.RecognizeFromPath(context.Background(), "uploads/a.jpg")

		require.True(t, result.OK())
		assert.Equal(t, PlateText("30A-99999"), result.Plate)
		assert.Equal(t, FullFrameConfidence, result.Confidence)
		require.NotNil(t, loaded)
		assert.Zero(t, loaded.open.Load())
	})

	t.Run("undecodable file is invalid input", func(t *testing.T) {
		pipeline := newTestPipeline(t, &scriptedDetector{}, &scriptedReader{}, func(string) (*testFrame, error) {
			return nil, errors.New("not an image")
		})

		result := pipeline.RecognizeFromPath(context.Background(), "uploads/b.jpg")

		require.False(t, result.OK())
		assert.Equal(t, apperr.InvalidInput, result.Err.Kind)
	})
}

func TestPipeline_DetectorFailureIsInternal(t *testing.T) {
	pipeline := newTestPipeline(t, &scriptedDetector{err: errors.New("blob shape mismatch")}, &scriptedReader{}, nil)

	result := pipeline.Recognize(context.Background(), newTestFrame())

	require.False(t, result.OK())
	assert.Equal(t, apperr.InternalError, result.Err.Kind)
}

func TestPipeline_PanicBecomesInternalError(t *testing.T) {
	pipeline := newTestPipeline(t, &scriptedDetector{boxes: []BoundingBox{box(1, 0.9)}}, &scriptedReader{panic: true}, nil)

	result := pipeline.Recognize(context.Background(), newTestFrame())

	require.False(t, result.OK())
	assert.Equal(t, apperr.InternalError, result.Err.Kind)
	assert.Equal(t, "processing error", result.Err.Message)
	assert.NotContains(t, result.Err.Error(), "reader exploded")
}

func TestPipeline_InferenceIsSerialized(t *testing.T) {
	detector := &exclusiveDetector{boxes: []BoundingBox{box(1, 0.9)}}
	reader := &scriptedReader{texts: map[string]PlateText{regionID(box(1, 0.9)): "51F-12345"}}
	pipeline := newTestPipeline(t, detector, reader, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := pipeline.Recognize(context.Background(), newTestFrame())
			assert.True(t, result.OK())
		}()
	}
	wg.Wait()

	assert.False(t, detector.overlap.Load(), "detector was entered concurrently")
}
