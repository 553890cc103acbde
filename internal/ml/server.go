package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cancer-predictor/internal/common"
	"cancer-predictor/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// maxRequestBytes caps the prediction request body.
const maxRequestBytes = 1 << 20

// ModelServer provides HTTP API for model predictions
type ModelServer struct {
	predictor *Predictor
	router    *mux.Router
	server    *http.Server
	startedAt time.Time
}

// PredictionRequest is the body of POST /predict. Features is kept raw so
// ParseFeatureVector can reject non-numeric elements that encoding/json
// would otherwise coerce.
type PredictionRequest struct {
	Features json.RawMessage `json:"features"`
}

// PredictionResponse is the success body of POST /predict. Probabilities is
// nested one level: one row per input vector.
type PredictionResponse struct {
	Probabilities [][]float64 `json:"probabilities"`
	ClassLabel    int         `json:"class_label"`
}

// ErrorResponse is the body of every 4xx/5xx produced by the service.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status        string  `json:"status"`
	ModelVersion  string  `json:"model_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewModelServer wires the prediction routes. metricsHandler, when non-nil,
// is mounted at /metrics.
func NewModelServer(predictor *Predictor, addr string, metricsHandler http.Handler) *ModelServer {
	ms := &ModelServer{
		predictor: predictor,
		startedAt: time.Now(),
	}

	r := mux.NewRouter()
	r.Use(middleware.Recoverer, middleware.RequestLogger)
	r.HandleFunc("/", ms.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/predict", ms.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/health", ms.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/model/info", ms.handleModelInfo).Methods(http.MethodGet)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}
	ms.router = r

	ms.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return ms
}

// Handler exposes the router, mainly for tests.
func (ms *ModelServer) Handler() http.Handler {
	return ms.router
}

// Start begins serving HTTP requests
func (ms *ModelServer) Start() error {
	log.Info().Str("addr", ms.server.Addr).Msg("starting model server")
	return ms.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (ms *ModelServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

func (ms *ModelServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: common.ReadyMessage})
}

func (ms *ModelServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ms.predictor.recordInvalidInput()
		writeError(w, http.StatusBadRequest, "invalid input", fmt.Sprintf("malformed request body: %v", err))
		return
	}

	features, err := ParseFeatureVector(req.Features)
	if err != nil {
		ms.predictor.recordInvalidInput()
		writeError(w, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	pred, err := ms.predictor.Predict(r.Context(), features)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		log.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "inference failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PredictionResponse{
		Probabilities: [][]float64{pred.Probabilities[:]},
		ClassLabel:    pred.ClassLabel,
	})
}

func (ms *ModelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ready",
		ModelVersion:  ms.predictor.Info().Version,
		UptimeSeconds: time.Since(ms.startedAt).Seconds(),
	})
}

func (ms *ModelServer) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ms.predictor.Info())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}
