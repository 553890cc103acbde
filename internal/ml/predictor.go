package ml

import (
	"context"
	"fmt"
	"math"
	"time"

	"cancer-predictor/internal/common"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// probabilityTolerance bounds how far a probability row may drift from summing to 1.
const probabilityTolerance = 1e-6

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	MLPredictionsInc()
	MLFailuresInc()
	MLInvalidRequestsInc()
	MLLatencyObserve(float64)
	MLPredictedClassInc(label int)
	MLModelLoadedSet(float64)
}

// Prediction is the result of one inference call.
type Prediction struct {
	// Probabilities are ordered [Benign, Malignant] and sum to 1.
	Probabilities [common.ClassCount]float64
	// ClassLabel is the index of the largest probability, lowest index on ties.
	ClassLabel int
}

// Predictor wraps the loaded scaler and model. Both are read-only after
// construction, so Predictor is safe for concurrent use.
type Predictor struct {
	scaler   *Scaler
	model    Model
	metrics  MetricsInterface
	loadedAt time.Time
}

var _ PredictorInterface = (*Predictor)(nil)

// LoadArtifacts loads the model and scaler from disk. Any failure wraps
// ErrArtifactLoad.
func LoadArtifacts(modelPath, scalerPath string) (*Network, *Scaler, error) {
	network, err := LoadNetwork(modelPath)
	if err != nil {
		return nil, nil, err
	}

	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("model_path", modelPath).
		Str("scaler_path", scalerPath).
		Str("model_version", network.Info().Version).
		Int("layers", len(network.layers)).
		Msg("model and scaler loaded")

	return network, scaler, nil
}

// NewPredictor builds a Predictor around already-loaded artifacts.
// metrics may be nil.
func NewPredictor(scaler *Scaler, model Model, metrics MetricsInterface) (*Predictor, error) {
	if scaler == nil {
		return nil, fmt.Errorf("%w: scaler is nil", ErrArtifactLoad)
	}
	if model == nil {
		return nil, fmt.Errorf("%w: model is nil", ErrArtifactLoad)
	}

	p := &Predictor{
		scaler:   scaler,
		model:    model,
		metrics:  metrics,
		loadedAt: time.Now(),
	}

	if p.metrics != nil {
		p.metrics.MLModelLoadedSet(float64(p.loadedAt.Unix()))
	}

	return p, nil
}

// Predict standardizes v, runs the model and derives the class label.
func (p *Predictor) Predict(ctx context.Context, v FeatureVector) (Prediction, error) {
	if p == nil {
		return Prediction{}, fmt.Errorf("%w: predictor is nil", ErrInternalInference)
	}

	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.MLLatencyObserve(time.Since(start).Seconds())
		}
	}()

	if err := ctx.Err(); err != nil {
		return Prediction{}, fmt.Errorf("prediction aborted: %w", err)
	}

	probs, err := p.infer(v)
	if err != nil {
		if p.metrics != nil {
			p.metrics.MLFailuresInc()
		}
		log.Error().Err(err).Msg("inference failed")
		return Prediction{}, err
	}

	pred := Prediction{
		Probabilities: probs,
		ClassLabel:    argmax(probs[:]),
	}

	if p.metrics != nil {
		p.metrics.MLPredictionsInc()
		p.metrics.MLPredictedClassInc(pred.ClassLabel)
	}

	log.Debug().
		Floats64("probabilities", probs[:]).
		Int("class_label", pred.ClassLabel).
		Dur("latency", time.Since(start)).
		Msg("prediction successful")

	return pred, nil
}

// PredictRaw checks the slice length before anything reaches the scaler or model.
func (p *Predictor) PredictRaw(ctx context.Context, features []float64) (Prediction, error) {
	v, err := NewFeatureVector(features)
	if err != nil {
		p.recordInvalidInput()
		return Prediction{}, err
	}
	return p.Predict(ctx, v)
}

// Info describes the loaded model.
func (p *Predictor) Info() ModelInfo {
	return p.model.Info()
}

// LoadedAt reports when the predictor was constructed.
func (p *Predictor) LoadedAt() time.Time {
	return p.loadedAt
}

func (p *Predictor) recordInvalidInput() {
	if p != nil && p.metrics != nil {
		p.metrics.MLInvalidRequestsInc()
	}
}

// infer runs the scale and forward steps. The matrix library panics on
// dimension mismatches; those are turned into ErrInternalInference.
func (p *Predictor) infer(v FeatureVector) (probs [common.ClassCount]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternalInference, r)
		}
	}()

	row := mat.NewDense(1, common.FeatureCount, v.Slice())

	standardized, err := p.scaler.Transform(row)
	if err != nil {
		return probs, fmt.Errorf("%w: scaling: %v", ErrInternalInference, err)
	}

	out, err := p.model.Forward(standardized)
	if err != nil {
		return probs, fmt.Errorf("%w: forward pass: %v", ErrInternalInference, err)
	}

	r, c := out.Dims()
	if r != 1 || c != common.ClassCount {
		return probs, fmt.Errorf("%w: expected 1x%d output, got %dx%d", ErrInternalInference, common.ClassCount, r, c)
	}

	var sum float64
	for i := 0; i < common.ClassCount; i++ {
		prob := out.At(0, i)
		if math.IsNaN(prob) || prob < 0 || prob > 1 {
			return probs, fmt.Errorf("%w: invalid probability %d: %f", ErrInternalInference, i, prob)
		}
		probs[i] = prob
		sum += prob
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return probs, fmt.Errorf("%w: probabilities sum to %f", ErrInternalInference, sum)
	}

	return probs, nil
}

// argmax returns the index of the largest value, preferring the lowest index on ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
