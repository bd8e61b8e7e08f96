package tuning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is read for its message
const maxErrorBody = 64 * 1024

// Request is the immutable payload of one tuning cycle
type Request struct {
	Source     SourceFile
	Key        Key
	Correction float64
}

// NewRequest snapshots the parameters for sending
func NewRequest(p Parameters) (Request, error) {
	if p.Source == nil {
		return Request{}, fmt.Errorf("no source file selected")
	}
	return Request{Source: *p.Source, Key: p.Key, Correction: p.Correction}, nil
}

// StatusError is a non-2xx response from the service
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tuning service returned %d: %s", e.StatusCode, e.Message)
}

// DecodeError is a 2xx response whose body is not a usable result
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed tuning response: %s: %v", e.Reason, e.Err)
	}
	return "malformed tuning response: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client talks to the remote tuning service
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a tuning service client for the given /tune endpoint
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the configured /tune URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

type tuneResponse struct {
	AudioBase64   *string    `json:"audio_base64"`
	Time          []float64  `json:"time"`
	PitchOriginal []*float64 `json:"pitch_original"`
	PitchTuned    []*float64 `json:"pitch_tuned"`
	DetectedKey   string     `json:"detected_key"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Tune uploads the clip and returns the decoded result
func (c *Client) Tune(ctx context.Context, req Request) (*Result, error) {
	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit tune: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var raw tuneResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}
	return raw.result()
}

// Health checks the service root endpoint
func (c *Client) Health(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	u.Path = "/"
	u.RawQuery = ""

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// encodeForm builds the multipart body: audio_file, key (omitted for auto),
// auto_key and correction
func encodeForm(req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := req.Source.Name
	if name == "" {
		name = "audio"
	}
	part, err := w.CreateFormFile("audio_file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Source.Data); err != nil {
		return nil, "", err
	}

	autoKey := "0"
	if req.Key.IsAuto() {
		autoKey = "1"
	} else if err := w.WriteField("key", req.Key.Wire()); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("auto_key", autoKey); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("correction", strconv.FormatFloat(req.Correction, 'f', -1, 64)); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func statusError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var e errorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// result validates the wire response and converts nulls to NaN
func (r tuneResponse) result() (*Result, error) {
	if r.AudioBase64 == nil || *r.AudioBase64 == "" {
		return nil, &DecodeError{Reason: "missing audio_base64"}
	}
	audio, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*r.AudioBase64))
	if err != nil {
		return nil, &DecodeError{Reason: "invalid audio_base64", Err: err}
	}

	if len(r.PitchOriginal) != len(r.Time) || len(r.PitchTuned) != len(r.Time) {
		return nil, &DecodeError{Reason: fmt.Sprintf(
			"series length mismatch: time=%d pitch_original=%d pitch_tuned=%d",
			len(r.Time), len(r.PitchOriginal), len(r.PitchTuned))}
	}

	for i, t := range r.Time {
		if math.IsNaN(t) || t < 0 {
			return nil, &DecodeError{Reason: fmt.Sprintf("negative time at index %d", i)}
		}
		if i > 0 && t < r.Time[i-1] {
			return nil, &DecodeError{Reason: fmt.Sprintf("time decreases at index %d", i)}
		}
	}

	return &Result{
		Audio:       audio,
		Time:        r.Time,
		Original:    nullsToNaN(r.PitchOriginal),
		Tuned:       nullsToNaN(r.PitchTuned),
		DetectedKey: r.DetectedKey,
	}, nil
}

func nullsToNaN(in []*float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}
