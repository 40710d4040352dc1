// Package intake submits job applications and drives the application form.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/form"
	"github.com/evpower/recruit-backend/internal/model"
)

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failure response is read.
const maxErrorBody = 64 << 10

// Client posts application forms to the intake endpoint.
type Client struct {
	url  string
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a client for url. A nil httpClient gets DefaultTimeout.
func NewClient(url string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		url:  url,
		http: httpClient,
		log:  log.With().Str("component", "intake_client").Logger(),
	}
}

// Submit sends one multipart request. Every failure is a *SubmissionError.
func (c *Client) Submit(ctx context.Context, in model.ApplicationFormInput) (*model.ApplicationAck, error) {
	body, contentType, err := encodeForm(in)
	if err != nil {
		return nil, &SubmissionError{Kind: KindUnknown, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, &SubmissionError{Kind: KindUnknown, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", c.url).Msg("Application submission failed to reach server")
		return nil, &SubmissionError{Kind: KindNetworkUnreachable, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Application submission response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyFailure(resp)
	}

	var ack model.ApplicationAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, &SubmissionError{Kind: KindUnknown, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &ack, nil
}

func classifyFailure(resp *http.Response) *SubmissionError {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &SubmissionError{Kind: KindNetworkUnreachable, Status: resp.StatusCode, Err: err}
	}

	if detail := extractDetail(raw); detail != "" {
		return &SubmissionError{Kind: KindServerRejected, Status: resp.StatusCode, Detail: detail}
	}
	return &SubmissionError{
		Kind:   KindUnknown,
		Status: resp.StatusCode,
		Detail: fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
	}
}

// extractDetail reads the "detail" member of a JSON error body. Non-string
// details (validation lists) are returned as compact JSON.
func extractDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(body.Detail) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body.Detail); err != nil {
		return ""
	}
	return buf.String()
}

// encodeForm builds the multipart body: text fields trimmed, cgpa as typed
// and the resume as a file part.
func encodeForm(in model.ApplicationFormInput) (io.Reader, string, error) {
	if in.Resume == nil {
		return nil, "", errors.New("resume is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, name := range form.Fields {
		if name == form.FieldResume {
			continue
		}
		value := form.Value(in, name)
		if name != form.FieldCGPA && name != form.FieldPosition {
			value = strings.TrimSpace(value)
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, form.FieldResume, in.Resume.Filename))
	ct := in.Resume.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, in.Resume.Reader()); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
