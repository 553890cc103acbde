package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"cancer-predictor/internal/common"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const hiddenUnits = 4

// testScalerSpec returns a scaler with distinct, non-trivial statistics per feature.
func testScalerSpec() ScalerSpec {
	spec := ScalerSpec{
		FeatureNames: common.FeatureNames[:],
		Mean:         make([]float64, common.FeatureCount),
		Scale:        make([]float64, common.FeatureCount),
	}
	for i := 0; i < common.FeatureCount; i++ {
		spec.Mean[i] = float64(i + 1)
		spec.Scale[i] = float64(i%5 + 1)
	}
	return spec
}

// testNetworkSpec returns a 30 -> 4 (relu) -> 2 (softmax) network with fixed weights.
func testNetworkSpec() NetworkSpec {
	hidden := LayerSpec{
		Units:      hiddenUnits,
		Activation: ActivationReLU,
		Weights:    make([][]float64, common.FeatureCount),
		Bias:       []float64{0.1, -0.1, 0.05, 0},
	}
	for i := range hidden.Weights {
		row := make([]float64, hiddenUnits)
		for j := range row {
			row[j] = float64((i*7+j*3)%11-5) / 10
		}
		hidden.Weights[i] = row
	}

	output := LayerSpec{
		Units:      common.ClassCount,
		Activation: ActivationSoftmax,
		Weights: [][]float64{
			{0.8, -0.8},
			{-0.5, 0.5},
			{0.3, -0.2},
			{-0.7, 0.9},
		},
		Bias: []float64{0.2, -0.2},
	}

	return NetworkSpec{
		Version:  "test-1",
		InputDim: common.FeatureCount,
		Layers:   []LayerSpec{hidden, output},
	}
}

func newTestPredictor(t *testing.T, metrics MetricsInterface) *Predictor {
	t.Helper()

	scaler, err := NewScaler(testScalerSpec())
	require.NoError(t, err)

	network, err := NewNetwork(testNetworkSpec())
	require.NoError(t, err)

	p, err := NewPredictor(scaler, network, metrics)
	require.NoError(t, err)
	return p
}

// writeArtifacts marshals both specs into dir and returns their paths.
func writeArtifacts(t *testing.T, dir string, network NetworkSpec, scaler ScalerSpec) (string, string) {
	t.Helper()

	modelPath := filepath.Join(dir, "model.json")
	scalerPath := filepath.Join(dir, "scaler.json")

	data, err := json.Marshal(network)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(modelPath, data, 0o644))

	data, err = json.Marshal(scaler)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(scalerPath, data, 0o644))

	return modelPath, scalerPath
}

// stubModel lets tests control the forward pass and count calls.
type stubModel struct {
	forward func(x *mat.Dense) (*mat.Dense, error)
	calls   atomic.Int64
}

func (s *stubModel) Forward(x *mat.Dense) (*mat.Dense, error) {
	s.calls.Add(1)
	return s.forward(x)
}

func (s *stubModel) Info() ModelInfo {
	return ModelInfo{Version: "stub", InputDim: common.FeatureCount}
}

func fixedOutput(probs ...float64) func(*mat.Dense) (*mat.Dense, error) {
	return func(*mat.Dense) (*mat.Dense, error) {
		return mat.NewDense(1, len(probs), append([]float64(nil), probs...)), nil
	}
}

func newStubPredictor(t *testing.T, model Model, metrics MetricsInterface) *Predictor {
	t.Helper()

	scaler, err := NewScaler(testScalerSpec())
	require.NoError(t, err)

	p, err := NewPredictor(scaler, model, metrics)
	require.NoError(t, err)
	return p
}

func filledVector(v float64) FeatureVector {
	var fv FeatureVector
	for i := range fv {
		fv[i] = v
	}
	return fv
}
