package common

// FeatureCount is the width of every feature vector accepted by the model.
const FeatureCount = 30

// FeatureNames is the canonical feature order. The scaler and the model were
// fit on columns in exactly this order, so both binaries import it from here.
var FeatureNames = [FeatureCount]string{
	"radius_mean", "texture_mean", "perimeter_mean", "area_mean", "smoothness_mean",
	"compactness_mean", "concavity_mean", "concave_points_mean", "symmetry_mean", "fractal_dimension_mean",
	"radius_se", "texture_se", "perimeter_se", "area_se", "smoothness_se",
	"compactness_se", "concavity_se", "concave_points_se", "symmetry_se", "fractal_dimension_se",
	"radius_worst", "texture_worst", "perimeter_worst", "area_worst", "smoothness_worst",
	"compactness_worst", "concavity_worst", "concave_points_worst", "symmetry_worst", "fractal_dimension_worst",
}

// Class labels
const (
	ClassBenign    = 0
	ClassMalignant = 1
	ClassCount     = 2
)

// ClassNames maps a class label to its display name.
var ClassNames = [ClassCount]string{"Benign", "Malignant"}

// ClassName returns the display name for label, or "" when label is out of range.
func ClassName(label int) string {
	if label < 0 || label >= ClassCount {
		return ""
	}
	return ClassNames[label]
}

// ReadyMessage is returned by the inference service liveness endpoint.
const ReadyMessage = "Breast Cancer Prediction API is working!"

// Environment variable keys
const (
	EnvConfigFile      = "CONFIG_FILE"
	EnvListenAddr      = "LISTEN_ADDR"
	EnvModelPath       = "MODEL_PATH"
	EnvScalerPath      = "SCALER_PATH"
	EnvMetricsEnabled  = "METRICS_ENABLED"
	EnvFrontendAddr    = "FRONTEND_ADDR"
	EnvAPIURL          = "API_URL"
	EnvAPITimeout      = "API_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
)

// Configuration defaults
const (
	DefaultListenAddr   = ":8000"
	DefaultModelPath    = "models/model.json"
	DefaultScalerPath   = "models/scaler.json"
	DefaultFrontendAddr = ":8501"
	DefaultAPIURL       = "http://127.0.0.1:8000"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
)

// Common error messages
const (
	ErrMsgModelPathRequired  = "model path is required"
	ErrMsgScalerPathRequired = "scaler path is required"
	ErrMsgAPIURLRequired     = "API URL is required"
)

// Validation constants
const (
	MinAPITimeoutSeconds      = 1
	MaxAPITimeoutSeconds      = 120
	MinShutdownTimeoutSeconds = 1
	MaxShutdownTimeoutSeconds = 300
)
