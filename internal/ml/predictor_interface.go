// Package ml provides breast-cancer diagnosis inference for the prediction API.
// It loads a fitted feature scaler and a feed-forward classifier from static
// artifacts once at startup, validates incoming feature vectors at the
// boundary, and serves predictions over HTTP.
//
// The loaded scaler and network are never mutated after load, so a single
// Predictor is shared by all request goroutines without locking.
package ml

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// PredictorInterface defines the prediction capability exposed to transports.
type PredictorInterface interface {
	// Predict scales the vector and runs it through the model.
	Predict(ctx context.Context, v FeatureVector) (Prediction, error)

	// PredictRaw validates the length of an untyped feature slice before predicting.
	// Returns an error wrapping ErrInvalidInput if the slice does not hold exactly 30 values.
	PredictRaw(ctx context.Context, features []float64) (Prediction, error)
}

// Model maps standardized rows to class probability rows.
type Model interface {
	// Forward returns an r×2 matrix of [Benign, Malignant] probabilities
	// for an r×30 input.
	Forward(x *mat.Dense) (*mat.Dense, error)

	// Info describes the loaded model for the info endpoint.
	Info() ModelInfo
}

// ModelInfo is the public description of a loaded model.
type ModelInfo struct {
	Version  string      `json:"version"`
	InputDim int         `json:"input_dim"`
	Features []string    `json:"features"`
	Layers   []LayerInfo `json:"layers"`
}

// LayerInfo describes one dense layer.
type LayerInfo struct {
	Units      int    `json:"units"`
	Activation string `json:"activation"`
}
