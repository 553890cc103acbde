package frontend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"cancer-predictor/internal/client"
	"cancer-predictor/internal/common"
	"cancer-predictor/internal/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	mu       sync.Mutex
	calls    int
	received ml.FeatureVector
	result   *client.Result
	err      error
}

func (s *stubClient) Predict(_ context.Context, features ml.FeatureVector) (*client.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.received = features
	return s.result, s.err
}

type mockMetrics struct {
	mu    sync.Mutex
	kinds map[string]int
}

func (m *mockMetrics) FrontendAPIErrorInc(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kinds == nil {
		m.kinds = make(map[string]int)
	}
	m.kinds[kind]++
}

func formValues(override map[string]string) url.Values {
	form := url.Values{}
	for i, name := range common.FeatureNames {
		form.Set(name, fmt.Sprintf("%d.5", i))
	}
	for k, v := range override {
		form.Set(k, v)
	}
	return form
}

func submit(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex_RendersFormAndSidebar(t *testing.T) {
	s := NewServer(&stubClient{}, nil, ":0", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	for _, name := range common.FeatureNames {
		assert.Contains(t, body, `name="`+name+`" value="0.0"`)
	}
	assert.Contains(t, body, "What is Breast Cancer?")
	assert.Contains(t, body, "Disclaimer")
	assert.Contains(t, body, "Standard error")
	assert.NotContains(t, body, `id="result"`)
}

func TestPredict_RendersResult(t *testing.T) {
	api := &stubClient{result: &client.Result{
		ClassLabel:    common.ClassMalignant,
		ClassName:     "Malignant",
		Probabilities: [2]float64{0.25, 0.75},
	}}
	s := NewServer(api, nil, ":0", nil)

	rec := submit(t, s.Handler(), formValues(nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<strong id="predicted-class">Malignant</strong>`)
	assert.Contains(t, body, "width: 25.0%")
	assert.Contains(t, body, "width: 75.0%")
	assert.Contains(t, body, "0.7500")
	assert.Contains(t, body, `value="29.5"`, "submitted values are kept in the form")

	assert.Equal(t, 1, api.calls)
	assert.Equal(t, 0.5, api.received[0])
	assert.Equal(t, 29.5, api.received[29])
}

func TestPredict_InvalidFieldSkipsAPICall(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		hint  string
	}{
		{"text", "abc", "must be a number"},
		{"blank", "  ", "value required"},
		{"nan", "NaN", "must be a number"},
		{"inf", "+Inf", "must be a number"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubClient{}
			s := NewServer(api, nil, ":0", nil)

			rec := submit(t, s.Handler(), formValues(map[string]string{"area_se": tc.value}))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.hint)
			assert.Contains(t, rec.Body.String(), "field-error")
			assert.Zero(t, api.calls)
		})
	}
}

func TestPredict_MissingFieldSkipsAPICall(t *testing.T) {
	api := &stubClient{}
	s := NewServer(api, nil, ":0", nil)

	form := formValues(nil)
	form.Del("radius_worst")

	rec := submit(t, s.Handler(), form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, api.calls)
}

func TestPredict_ErrorMessages(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantText string
		wantKind string
	}{
		{"transport", fmt.Errorf("%w: connection refused", client.ErrTransport), "Error calling API: ", KindTransport},
		{"shape", fmt.Errorf("%w: missing class_label", client.ErrResponseShape), "An unexpected error occurred: ", KindResponse},
		{"other", errors.New("boom"), "An unexpected error occurred: boom", KindResponse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := &mockMetrics{}
			s := NewServer(&stubClient{err: tc.err}, metrics, ":0", nil)

			rec := submit(t, s.Handler(), formValues(nil))
			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantText)
			assert.NotContains(t, rec.Body.String(), `id="result"`)
			assert.Equal(t, 1, metrics.kinds[tc.wantKind])
		})
	}
}

func TestPredict_ServiceDownShowsConnectivityError(t *testing.T) {
	api := httptest.NewServer(http.NotFoundHandler())
	apiURL := api.URL
	api.Close()

	s := NewServer(client.New(apiURL, time.Second), nil, ":0", nil)

	rec := submit(t, s.Handler(), formValues(nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error calling API: ")
}

func TestPredict_MissingClassLabelShowsGenericError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"probabilities":[[0.4,0.6]]}`))
	}))
	defer api.Close()

	s := NewServer(client.New(api.URL, time.Second), nil, ":0", nil)

	rec := submit(t, s.Handler(), formValues(nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred: ")
	assert.Contains(t, rec.Body.String(), "missing class_label")
}

func TestPredict_BenignThroughRealClient(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"probabilities":[[0.9,0.1]],"class_label":0}`))
	}))
	defer api.Close()

	s := NewServer(client.New(api.URL, time.Second), nil, ":0", nil)

	rec := submit(t, s.Handler(), formValues(nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<strong id="predicted-class">Benign</strong>`)
}

func TestHealth(t *testing.T) {
	s := NewServer(&stubClient{}, nil, ":0", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
