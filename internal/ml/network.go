package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"cancer-predictor/internal/common"

	"gonum.org/v1/gonum/mat"
)

// Supported activations
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationTanh    = "tanh"
	ActivationSoftmax = "softmax"
)

// NetworkSpec is the on-disk model artifact. Weights use the Keras Dense
// kernel layout: one row per input unit, one column per output unit.
type NetworkSpec struct {
	Version  string      `json:"version"`
	InputDim int         `json:"input_dim"`
	Layers   []LayerSpec `json:"layers"`
}

// LayerSpec is a single dense layer of a NetworkSpec.
type LayerSpec struct {
	Units      int         `json:"units"`
	Activation string      `json:"activation"`
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
}

type denseLayer struct {
	weights    *mat.Dense
	bias       []float64
	activation string
}

// Network is a feed-forward classifier ending in a 2-way softmax or a
// single sigmoid unit.
type Network struct {
	version  string
	inputDim int
	layers   []denseLayer
}

// LoadNetwork reads and validates a model artifact.
func LoadNetwork(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read model %s: %v", ErrArtifactLoad, path, err)
	}

	var spec NetworkSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: parse model %s: %v", ErrArtifactLoad, path, err)
	}

	n, err := NewNetwork(spec)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return n, nil
}

// NewNetwork validates spec and builds a Network from it.
func NewNetwork(spec NetworkSpec) (*Network, error) {
	if spec.InputDim != common.FeatureCount {
		return nil, fmt.Errorf("%w: input_dim must be %d, got %d", ErrArtifactLoad, common.FeatureCount, spec.InputDim)
	}
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("%w: model has no layers", ErrArtifactLoad)
	}

	n := &Network{
		version:  spec.Version,
		inputDim: spec.InputDim,
		layers:   make([]denseLayer, 0, len(spec.Layers)),
	}
	if n.version == "" {
		n.version = "unknown"
	}

	in := spec.InputDim
	for idx, ls := range spec.Layers {
		layer, err := buildLayer(idx, in, ls)
		if err != nil {
			return nil, err
		}
		n.layers = append(n.layers, layer)
		in = ls.Units
	}

	last := spec.Layers[len(spec.Layers)-1]
	switch {
	case last.Units == common.ClassCount && last.Activation == ActivationSoftmax:
	case last.Units == 1 && last.Activation == ActivationSigmoid:
	default:
		return nil, fmt.Errorf("%w: output layer must be %d-unit softmax or 1-unit sigmoid, got %d-unit %s",
			ErrArtifactLoad, common.ClassCount, last.Units, last.Activation)
	}

	return n, nil
}

func buildLayer(idx, in int, ls LayerSpec) (denseLayer, error) {
	if ls.Units <= 0 {
		return denseLayer{}, fmt.Errorf("%w: layer %d has %d units", ErrArtifactLoad, idx, ls.Units)
	}
	switch ls.Activation {
	case ActivationLinear, ActivationReLU, ActivationSigmoid, ActivationTanh, ActivationSoftmax:
	case "":
		ls.Activation = ActivationLinear
	default:
		return denseLayer{}, fmt.Errorf("%w: layer %d has unknown activation %q", ErrArtifactLoad, idx, ls.Activation)
	}
	if len(ls.Weights) != in {
		return denseLayer{}, fmt.Errorf("%w: layer %d expects %d weight rows, got %d", ErrArtifactLoad, idx, in, len(ls.Weights))
	}
	if len(ls.Bias) != ls.Units {
		return denseLayer{}, fmt.Errorf("%w: layer %d expects %d biases, got %d", ErrArtifactLoad, idx, ls.Units, len(ls.Bias))
	}

	data := make([]float64, 0, in*ls.Units)
	for r, row := range ls.Weights {
		if len(row) != ls.Units {
			return denseLayer{}, fmt.Errorf("%w: layer %d weight row %d has %d columns, expected %d", ErrArtifactLoad, idx, r, len(row), ls.Units)
		}
		for _, w := range row {
			if !isFinite(w) {
				return denseLayer{}, fmt.Errorf("%w: layer %d has non-finite weight", ErrArtifactLoad, idx)
			}
		}
		data = append(data, row...)
	}
	for _, b := range ls.Bias {
		if !isFinite(b) {
			return denseLayer{}, fmt.Errorf("%w: layer %d has non-finite bias", ErrArtifactLoad, idx)
		}
	}

	bias := make([]float64, len(ls.Bias))
	copy(bias, ls.Bias)

	return denseLayer{
		weights:    mat.NewDense(in, ls.Units, data),
		bias:       bias,
		activation: ls.Activation,
	}, nil
}

// Forward runs x through every layer. A single sigmoid output p is expanded
// to the pair [1-p, p] so callers always receive two columns.
func (n *Network) Forward(x *mat.Dense) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != n.inputDim {
		return nil, fmt.Errorf("network expects %d columns, got %d", n.inputDim, c)
	}

	h := x
	for _, l := range n.layers {
		var out mat.Dense
		out.Mul(h, l.weights)
		out.Apply(func(_, j int, v float64) float64 {
			return v + l.bias[j]
		}, &out)
		activate(&out, l.activation)
		h = &out
	}

	_, outCols := h.Dims()
	if outCols == common.ClassCount {
		return h, nil
	}

	probs := mat.NewDense(r, common.ClassCount, nil)
	for i := 0; i < r; i++ {
		p := h.At(i, 0)
		probs.Set(i, common.ClassBenign, 1-p)
		probs.Set(i, common.ClassMalignant, p)
	}
	return probs, nil
}

// Info describes the network layers.
func (n *Network) Info() ModelInfo {
	layers := make([]LayerInfo, len(n.layers))
	for i, l := range n.layers {
		_, units := l.weights.Dims()
		layers[i] = LayerInfo{Units: units, Activation: l.activation}
	}
	features := make([]string, common.FeatureCount)
	copy(features, common.FeatureNames[:])
	return ModelInfo{
		Version:  n.version,
		InputDim: n.inputDim,
		Features: features,
		Layers:   layers,
	}
}

func activate(m *mat.Dense, activation string) {
	switch activation {
	case ActivationReLU:
		m.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, m)
	case ActivationSigmoid:
		m.Apply(func(_, _ int, v float64) float64 { return sigmoid(v) }, m)
	case ActivationTanh:
		m.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, m)
	case ActivationSoftmax:
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			softmax(m.RawRowView(i))
		}
	}
}

// softmax normalizes row in place, shifting by the row max for stability.
func softmax(row []float64) {
	maxV := math.Inf(-1)
	for _, v := range row {
		if v > maxV {
			maxV = v
		}
	}
	var sum float64
	for i, v := range row {
		row[i] = math.Exp(v - maxV)
		sum += row[i]
	}
	for i := range row {
		row[i] /= sum
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
