package ml

import "errors"

var (
	// ErrArtifactLoad marks a missing or malformed model or scaler artifact.
	// It is only returned at startup and is fatal for the service.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrInvalidInput marks a request whose feature vector has the wrong shape or type.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternalInference marks an unexpected failure while scaling or predicting.
	ErrInternalInference = errors.New("internal inference error")
)
