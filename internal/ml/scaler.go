package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"cancer-predictor/internal/common"

	"gonum.org/v1/gonum/mat"
)

// ScalerSpec is the on-disk scaler artifact: the mean_ and scale_ vectors of
// a fitted standard scaler, in feature order.
type ScalerSpec struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// Scaler standardizes rows with fixed per-feature statistics.
type Scaler struct {
	mean  [common.FeatureCount]float64
	scale [common.FeatureCount]float64
}

// LoadScaler reads and validates a scaler artifact.
func LoadScaler(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read scaler %s: %v", ErrArtifactLoad, path, err)
	}

	var spec ScalerSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: parse scaler %s: %v", ErrArtifactLoad, path, err)
	}

	s, err := NewScaler(spec)
	if err != nil {
		return nil, fmt.Errorf("scaler %s: %w", path, err)
	}
	return s, nil
}

// NewScaler validates spec and builds a Scaler from it.
func NewScaler(spec ScalerSpec) (*Scaler, error) {
	if len(spec.Mean) != common.FeatureCount {
		return nil, fmt.Errorf("%w: expected %d means, got %d", ErrArtifactLoad, common.FeatureCount, len(spec.Mean))
	}
	if len(spec.Scale) != common.FeatureCount {
		return nil, fmt.Errorf("%w: expected %d scales, got %d", ErrArtifactLoad, common.FeatureCount, len(spec.Scale))
	}
	if len(spec.FeatureNames) > 0 {
		if len(spec.FeatureNames) != common.FeatureCount {
			return nil, fmt.Errorf("%w: expected %d feature names, got %d", ErrArtifactLoad, common.FeatureCount, len(spec.FeatureNames))
		}
		for i, name := range spec.FeatureNames {
			if name != common.FeatureNames[i] {
				return nil, fmt.Errorf("%w: feature %d is %q, expected %q", ErrArtifactLoad, i, name, common.FeatureNames[i])
			}
		}
	}

	s := &Scaler{}
	for i := 0; i < common.FeatureCount; i++ {
		m, sc := spec.Mean[i], spec.Scale[i]
		if !isFinite(m) || !isFinite(sc) {
			return nil, fmt.Errorf("%w: non-finite statistics for %s", ErrArtifactLoad, common.FeatureNames[i])
		}
		if sc == 0 {
			return nil, fmt.Errorf("%w: zero scale for %s", ErrArtifactLoad, common.FeatureNames[i])
		}
		s.mean[i] = m
		s.scale[i] = sc
	}
	return s, nil
}

// Transform returns a new matrix with (x - mean) / scale applied column-wise.
func (s *Scaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	_, c := x.Dims()
	if c != common.FeatureCount {
		return nil, fmt.Errorf("scaler expects %d columns, got %d", common.FeatureCount, c)
	}

	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, x)
	return &out, nil
}

// Mean returns the stored mean for feature i.
func (s *Scaler) Mean(i int) float64 {
	return s.mean[i]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
