package ml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"cancer-predictor/internal/common"
)

// FeatureVector holds the 30 measurements in common.FeatureNames order.
// Values are not range-checked: any finite number is accepted.
type FeatureVector [common.FeatureCount]float64

// NewFeatureVector copies features into a FeatureVector.
func NewFeatureVector(features []float64) (FeatureVector, error) {
	var v FeatureVector
	if len(features) != common.FeatureCount {
		return v, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, common.FeatureCount, len(features))
	}
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v, fmt.Errorf("%w: feature %d (%s) is not a finite number", ErrInvalidInput, i, common.FeatureNames[i])
		}
	}
	copy(v[:], features)
	return v, nil
}

// Slice returns the vector as a new slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// ParseFeatureVector decodes the raw "features" value of a request body.
// Anything other than an array of exactly 30 JSON numbers is rejected with
// an error wrapping ErrInvalidInput.
func ParseFeatureVector(raw json.RawMessage) (FeatureVector, error) {
	var v FeatureVector

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, fmt.Errorf("%w: features is required", ErrInvalidInput)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return v, fmt.Errorf("%w: features must be an array of numbers", ErrInvalidInput)
	}
	if len(items) != common.FeatureCount {
		return v, fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, common.FeatureCount, len(items))
	}

	for i, item := range items {
		f, err := parseNumber(item)
		if err != nil {
			return v, fmt.Errorf("%w: feature %d (%s) %v", ErrInvalidInput, i, common.FeatureNames[i], err)
		}
		v[i] = f
	}

	return v, nil
}

// parseNumber accepts only a JSON number literal. json.Unmarshal into a
// float64 would silently turn null into 0, so the token type is checked first.
func parseNumber(item json.RawMessage) (float64, error) {
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()

	var tok any
	if err := dec.Decode(&tok); err != nil {
		return 0, fmt.Errorf("is not valid JSON")
	}
	n, ok := tok.(json.Number)
	if !ok {
		return 0, fmt.Errorf("must be a number, got %s", describeJSON(tok))
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("is not a finite number")
	}
	return f, nil
}

func describeJSON(tok any) string {
	switch tok.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
