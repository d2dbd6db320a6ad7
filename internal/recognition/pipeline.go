package recognition

import (
	"context"
	"iter"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lpservice/internal/apperr"
	"lpservice/internal/logger"
)

// LoaderFunc decodes the image stored at path into a frame.
type LoaderFunc[F any] func(path string) (F, error)

// Pipeline is the recognition entry point shared by all requests. Calls are
// synchronous; concurrent calls are safe and their inference is serialized
// by the registry.
type Pipeline[F Frame[F]] struct {
	registry *Registry[F]
	loader   LoaderFunc[F]
	logger   *logger.Logger
	tracer   trace.Tracer
}

func NewPipeline[F Frame[F]](registry *Registry[F], loader LoaderFunc[F], logger *logger.Logger) *Pipeline[F] {
	return &Pipeline[F]{
		registry: registry,
		loader:   loader,
		logger:   logger,
		tracer:   otel.Tracer("lpservice/recognition"),
	}
}

// Ready is the readiness gate checked before accepting recognition calls.
func (p *Pipeline[F]) Ready() bool {
	return p.registry.Ready()
}

// Recognize runs detection, per-candidate text extraction and selection on
// frame. The frame stays owned by the caller.
func (p *Pipeline[F]) Recognize(ctx context.Context, frame F) (result Result) {
	ctx, span := p.tracer.Start(ctx, "recognition.recognize")
	defer func() {
		endSpan(span, result)
	}()

	if !p.Ready() {
		return Failure(apperr.ServiceNotReady, "recognition service not ready")
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Recognition panicked: %v", r)
			result = Failure(apperr.InternalError, "processing error")
		}
	}()

	boxes, err := p.detect(ctx, frame)
	if err != nil {
		p.logger.Error("Plate detection failed: %v", err)
		return Result{Err: apperr.From(err)}
	}

	result = Select(boxes, frame, &tracedReader[F]{ctx: ctx, tracer: p.tracer, reader: p.registry})
	if result.OK() {
		p.logger.Info("Recognized plate %s (confidence %.2f)", result.Plate, result.Confidence)
	} else {
		p.logger.Info("Recognition finished without plate: %v", result.Err)
	}
	return result
}

// RecognizeFromPath decodes the image at path and recognizes it. The decoded
// frame is released before returning; the file itself is left alone.
func (p *Pipeline[F]) RecognizeFromPath(ctx context.Context, path string) Result {
	if !p.Ready() {
		return Failure(apperr.ServiceNotReady, "recognition service not ready")
	}

	frame, err := p.loader(path)
	if err != nil {
		p.logger.Warning("Could not read image %s: %v", path, err)
		return Result{Err: apperr.Wrap(apperr.InvalidInput, "could not read image file", err)}
	}
	defer frame.Close()

	return p.Recognize(ctx, frame)
}

func (p *Pipeline[F]) detect(ctx context.Context, frame F) (iter.Seq[BoundingBox], error) {
	_, span := p.tracer.Start(ctx, "recognition.detect")
	defer span.End()

	boxes, err := p.registry.Detect(frame)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return boxes, nil
}

// tracedReader wraps every text extraction in its own span.
type tracedReader[F any] struct {
	ctx    context.Context
	tracer trace.Tracer
	reader TextReader[F]
}

func (r *tracedReader[F]) ReadText(region F) (PlateText, error) {
	_, span := r.tracer.Start(r.ctx, "recognition.read_text")
	defer span.End()

	text, err := r.reader.ReadText(region)
	if err != nil {
		span.RecordError(err)
		return text, err
	}
	span.SetAttributes(attribute.Bool("readable", text.Readable()))
	return text, nil
}

func endSpan(span trace.Span, result Result) {
	if result.OK() {
		span.SetAttributes(
			attribute.String("plate", string(result.Plate)),
			attribute.Float64("confidence", result.Confidence),
		)
	} else {
		span.SetAttributes(attribute.String("error.kind", result.Err.Kind.String()))
		if result.Err.Kind == apperr.InternalError {
			span.SetStatus(codes.Error, result.Err.Error())
		}
	}
	span.End()
}
