package contact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds one submission, upload included.
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 64 << 10

// Client posts contact forms to the directory API. It sends at most one
// request per Submit and never retries.
type Client struct {
	endpoint   string
	httpClient *http.Client
	tracker    *Tracker
}

// NewClient targets <baseURL>/contact. A nil httpClient gets DefaultTimeout;
// tracker is optional.
func NewClient(baseURL string, httpClient *http.Client, tracker *Tracker) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/contact",
		httpClient: httpClient,
		tracker:    tracker,
	}
}

// Submit validates d and, when it is valid, sends it. Failures are returned
// as *SubmitError, except ErrBusy when another submission is in flight.
func (c *Client) Submit(ctx context.Context, d Draft) error {
	if c.tracker != nil {
		if err := c.tracker.Begin(); err != nil {
			return err
		}
	}

	if fe := Validate(d); len(fe) > 0 {
		if c.tracker != nil {
			c.tracker.Abort()
		}
		return &SubmitError{Kind: KindValidation, Fields: fe}
	}

	err := c.send(ctx, d)
	if c.tracker != nil {
		c.tracker.Finish(err)
	}
	return err
}

func (c *Client) send(ctx context.Context, d Draft) error {
	body, contentType, err := BuildMultipart(d)
	if err != nil {
		return &SubmitError{Kind: KindTransport, Fields: FieldErrors{FieldGeneral: err.Error()}, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return &SubmitError{Kind: KindTransport, Fields: FieldErrors{FieldGeneral: err.Error()}, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	rejected := &SubmitError{
		Kind:       KindRejected,
		StatusCode: resp.StatusCode,
		Fields:     FieldErrors{FieldGeneral: MsgUnexpected},
		Err:        fmt.Errorf("contact submit: status %d", resp.StatusCode),
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if msg, ok := decodeMessage(raw); ok {
			rejected.Fields = MapError(msg)
		}
	}
	return rejected
}

func transportError(err error) *SubmitError {
	msg := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		msg = urlErr.Err.Error()
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		msg = MsgConnectionRefused
	case isTimeout(err):
		msg = MsgTimeout
	}
	return &SubmitError{Kind: KindTransport, Fields: FieldErrors{FieldGeneral: msg}, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
