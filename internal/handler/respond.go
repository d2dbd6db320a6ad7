package handler

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"lpservice/internal/apperr"
	"lpservice/internal/dto"
	"lpservice/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusFor maps an error kind to the HTTP status reported for it.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.ServiceNotReady:
		return http.StatusServiceUnavailable
	case apperr.InvalidInput, apperr.CameraUnsupported:
		return http.StatusBadRequest
	case apperr.NoPlateDetected, apperr.TextUnreadable:
		return http.StatusUnprocessableEntity
	case apperr.CameraNotActive:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body dto.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dto.Response{Success: true, Data: data})
}

// writeBadRequest rejects a request before it reaches the service.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, dto.Response{
		Error: message,
		Kind:  apperr.InvalidInput.String(),
	})
}

// writeError reports err with the status of its kind. Internal errors are
// logged and their cause is not sent to the client.
func writeError(w http.ResponseWriter, logger *logger.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.From(err)
	}

	message := appErr.Message
	if appErr.Kind == apperr.InternalError {
		logger.Error("Request failed: %v", err)
		message = "internal server error: " + appErr.Message
	}
	writeJSON(w, StatusFor(appErr.Kind), dto.Response{
		Error: message,
		Kind:  appErr.Kind.String(),
	})
}
