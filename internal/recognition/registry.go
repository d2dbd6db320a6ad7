package recognition

import (
	"errors"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	"lpservice/internal/apperr"
)

// Models is what a registry loader produces.
type Models[F any] struct {
	Detector Detector[F]
	Reader   TextReader[F]
}

// LoadFunc builds the detector and reader. It is called at most once per Registry.
type LoadFunc[F any] func() (Models[F], error)

// Registry loads the models once and shares them across concurrent
// recognition calls. Every inference call goes through one mutex: the
// underlying runtime is not documented as reentrant for a shared network.
type Registry[F any] struct {
	load LoadFunc[F]

	once    sync.Once
	loadErr error
	models  Models[F]
	ready   atomic.Bool

	// inference serializes Detect and ReadText across the shared models
	inference sync.Mutex
}

func NewRegistry[F any](load LoadFunc[F]) *Registry[F] {
	return &Registry[F]{load: load}
}

// Load runs the loader on the first call and returns the same outcome on
// every later call. A failed load is permanent.
func (r *Registry[F]) Load() error {
	r.once.Do(func() {
		models, err := r.load()
		if err == nil && (models.Detector == nil || models.Reader == nil) {
			err = errors.New("loader returned incomplete models")
		}
		if err != nil {
			r.loadErr = apperr.Wrap(apperr.ServiceNotReady, "failed to load recognition models", err)
			return
		}
		r.models = models
		r.ready.Store(true)
	})
	return r.loadErr
}

// Ready reports whether the models were loaded successfully and not closed.
func (r *Registry[F]) Ready() bool {
	return r.ready.Load()
}

func (r *Registry[F]) Detect(frame F) (iter.Seq[BoundingBox], error) {
	r.inference.Lock()
	defer r.inference.Unlock()
	if !r.ready.Load() {
		return nil, apperr.New(apperr.ServiceNotReady, "recognition models are not loaded")
	}
	return r.models.Detector.Detect(frame)
}

func (r *Registry[F]) ReadText(region F) (PlateText, error) {
	r.inference.Lock()
	defer r.inference.Unlock()
	if !r.ready.Load() {
		return Unreadable, apperr.New(apperr.ServiceNotReady, "recognition models are not loaded")
	}
	return r.models.Reader.ReadText(region)
}

// Close releases models that hold native resources. The registry is not
// ready afterwards.
func (r *Registry[F]) Close() error {
	r.inference.Lock()
	defer r.inference.Unlock()
	if !r.ready.Swap(false) {
		return nil
	}

	var errs []error
	if c, ok := r.models.Detector.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := r.models.Reader.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
