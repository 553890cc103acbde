// Package client calls the prediction API on behalf of the front-end.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cancer-predictor/internal/common"
	"cancer-predictor/internal/ml"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

var (
	// ErrTransport covers connection failures, timeouts and non-2xx replies.
	ErrTransport = errors.New("prediction API unreachable")
	// ErrResponseShape is returned when a 2xx body does not match the
	// prediction contract.
	ErrResponseShape = errors.New("unexpected prediction response")
)

const defaultTimeout = 10 * time.Second

type Client struct {
	base string
	rest *resty.Client
}

// New returns a client for the API at baseURL. A non-positive timeout falls
// back to 10s. Requests are never retried.
func New(baseURL string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(defaultTimeout)
	}
	r.SetRetryCount(0)
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(baseURL, "/"), rest: r}
}

// Result is a validated prediction as shown to the user.
type Result struct {
	ClassLabel    int
	ClassName     string
	Probabilities [common.ClassCount]float64
}

type predictReq struct {
	Features []float64 `json:"features"`
}

// predictResp uses pointers so absent fields can be told apart from zero values.
type predictResp struct {
	Probabilities *[][]float64 `json:"probabilities"`
	ClassLabel    *int         `json:"class_label"`
}

// BaseURL reports the API address the client targets.
func (c *Client) BaseURL() string {
	return c.base
}

// Predict posts features to /predict and validates the reply.
func (c *Client) Predict(ctx context.Context, features ml.FeatureVector) (*Result, error) {
	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(predictReq{Features: features.Slice()}).
		Post(c.base + "/predict")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrTransport, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	result, err := decodeResult(resp.Body())
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("class_label", result.ClassLabel).
		Dur("latency", time.Since(start)).
		Msg("prediction received")

	return result, nil
}

func decodeResult(body []byte) (*Result, error) {
	var pr predictResp
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseShape, err)
	}
	if pr.ClassLabel == nil {
		return nil, fmt.Errorf("%w: missing class_label", ErrResponseShape)
	}
	if pr.Probabilities == nil {
		return nil, fmt.Errorf("%w: missing probabilities", ErrResponseShape)
	}

	rows := *pr.Probabilities
	if len(rows) != 1 || len(rows[0]) != common.ClassCount {
		return nil, fmt.Errorf("%w: probabilities must be one row of %d values", ErrResponseShape, common.ClassCount)
	}

	label := *pr.ClassLabel
	name := common.ClassName(label)
	if name == "" {
		return nil, fmt.Errorf("%w: class_label %d out of range", ErrResponseShape, label)
	}

	res := &Result{ClassLabel: label, ClassName: name}
	for i, p := range rows[0] {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: probability %v out of range", ErrResponseShape, p)
		}
		res.Probabilities[i] = p
	}
	return res, nil
}
