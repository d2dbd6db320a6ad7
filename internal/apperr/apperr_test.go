package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("device busy")

	assert.Equal(t, CameraInitFailed, KindOf(Wrap(CameraInitFailed, "open camera", cause)))
	assert.Equal(t, CameraNotActive, KindOf(fmt.Errorf("preview: %w", New(CameraNotActive, "camera is not running"))))
	assert.Equal(t, InternalError, KindOf(cause))
}

func TestError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("capture: %w", Wrap(CameraCaptureFailed, "read frame", errors.New("timeout")))

	assert.True(t, errors.Is(err, New(CameraCaptureFailed, "")))
	assert.False(t, errors.Is(err, New(CameraNotActive, "")))
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(InvalidInput, "decode image", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "InvalidInput: decode image: no such file", err.Error())
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	classified := New(TextUnreadable, "no readable plate")
	assert.Same(t, classified, From(classified))

	wrapped := From(errors.New("boom"))
	assert.Equal(t, InternalError, wrapped.Kind)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "NoPlateDetected", NoPlateDetected.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
