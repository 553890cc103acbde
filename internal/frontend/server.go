// Package frontend serves the form-based client: 30 feature inputs, one API
// call per submit, and a result view with per-class probability bars.
package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cancer-predictor/internal/client"
	"cancer-predictor/internal/common"
	"cancer-predictor/internal/middleware"
	"cancer-predictor/internal/ml"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Error kinds recorded by MetricsInterface.
const (
	KindTransport = "transport"
	KindResponse  = "response"
)

// PredictClient is the API call made on submit.
type PredictClient interface {
	Predict(ctx context.Context, features ml.FeatureVector) (*client.Result, error)
}

// MetricsInterface defines metrics methods needed by the front-end
type MetricsInterface interface {
	FrontendAPIErrorInc(kind string)
}

// Server renders the prediction form and results.
type Server struct {
	api     PredictClient
	metrics MetricsInterface
	router  *mux.Router
	server  *http.Server
}

type field struct {
	Name  string
	Value string
	Error string
}

type fieldGroup struct {
	Title  string
	Fields []field
}

type pageData struct {
	Groups     []fieldGroup
	Result     *client.Result
	Error      string
	ClassNames [common.ClassCount]string
}

var groupTitles = []string{"Mean values", "Standard error", "Worst values"}

// NewServer wires the front-end routes. metrics may be nil; metricsHandler,
// when non-nil, is mounted at /metrics.
func NewServer(api PredictClient, metrics MetricsInterface, addr string, metricsHandler http.Handler) *Server {
	s := &Server{api: api, metrics: metrics}

	r := mux.NewRouter()
	r.Use(middleware.Recoverer, middleware.RequestLogger)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}
	s.router = r

	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting front-end server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var values [common.FeatureCount]string
	for i := range values {
		values[i] = "0.0"
	}
	s.render(w, http.StatusOK, newPage(values, nil))
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageWithError(fmt.Sprintf("Could not read form: %v", err)))
		return
	}

	features, values, fieldErrs := parseForm(r)
	page := newPage(values, fieldErrs)
	if len(fieldErrs) > 0 {
		page.Error = "Please correct the highlighted values."
		s.render(w, http.StatusUnprocessableEntity, page)
		return
	}

	res, err := s.api.Predict(r.Context(), features)
	if err != nil {
		var kind string
		if errors.Is(err, client.ErrTransport) {
			kind = KindTransport
			page.Error = fmt.Sprintf("Error calling API: %v", err)
		} else {
			kind = KindResponse
			page.Error = fmt.Sprintf("An unexpected error occurred: %v", err)
		}
		if s.metrics != nil {
			s.metrics.FrontendAPIErrorInc(kind)
		}
		log.Warn().Err(err).Str("kind", kind).Msg("prediction call failed")
		s.render(w, http.StatusBadGateway, page)
		return
	}

	page.Result = res
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) render(w http.ResponseWriter, status int, page pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		log.Error().Err(err).Msg("failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// parseForm reads the 30 feature fields. The raw strings are returned so the
// form can be re-rendered exactly as submitted.
func parseForm(r *http.Request) (ml.FeatureVector, [common.FeatureCount]string, map[string]string) {
	var (
		features ml.FeatureVector
		values   [common.FeatureCount]string
		errs     = make(map[string]string)
	)

	for i, name := range common.FeatureNames {
		raw := strings.TrimSpace(r.PostFormValue(name))
		values[i] = raw
		if raw == "" {
			errs[name] = "value required"
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs[name] = "must be a number"
			continue
		}
		features[i] = f
	}
	return features, values, errs
}

func newPage(values [common.FeatureCount]string, errs map[string]string) pageData {
	page := pageData{ClassNames: common.ClassNames}
	per := common.FeatureCount / len(groupTitles)
	for g, title := range groupTitles {
		group := fieldGroup{Title: title}
		for i := g * per; i < (g+1)*per; i++ {
			name := common.FeatureNames[i]
			group.Fields = append(group.Fields, field{Name: name, Value: values[i], Error: errs[name]})
		}
		page.Groups = append(page.Groups, group)
	}
	return page
}

func pageWithError(msg string) pageData {
	var values [common.FeatureCount]string
	page := newPage(values, nil)
	page.Error = msg
	return page
}
