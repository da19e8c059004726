package orchestrate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/sse"
)

// DefaultCallTimeout bounds a single agent call unless overridden.
const DefaultCallTimeout = 120 * time.Second

// Result is the outcome of one agent call. Either Success is true and Content
// holds the complete aggregate, or Success is false and Err classifies the
// failure. A truncated aggregate is never reported as success.
type Result struct {
	Success bool
	Content string
	Err     *core.CallError
}

// Options configure a Client.
type Options struct {
	// HTTPClient issues the outbound requests. Defaults to a dedicated
	// client; the per-call timeout is enforced via context, not here.
	HTTPClient *http.Client

	// Timeout is the upper wait bound per call. Exceeding it classifies the
	// call as a timeout; there is no retry. Defaults to DefaultCallTimeout.
	Timeout time.Duration

	// Logger receives per-call logs. Defaults to a no-op logger.
	Logger logging.Logger
}

// Client issues calls against agent /process endpoints.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     logging.Logger
}

// NewClient constructs a Client.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		HTTPClient: &http.Client{},
		Timeout:    DefaultCallTimeout,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		logger:     logging.OrDefault(opts.Logger),
	}
}

// Call posts one user message to endpoint's /process route, streams the
// response, and returns the aggregated content. Failures never escape as
// errors; they come back classified inside the Result.
func (c *Client) Call(ctx context.Context, endpoint, text, sessionID string) Result {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(core.AgentRequest{
		Input:     []core.Message{core.NewUserMessage(text)},
		SessionID: sessionID,
	})
	if err != nil {
		return failure(core.WrapCallError(core.ErrorProtocol, err))
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint+"/process", bytes.NewReader(body))
	if err != nil {
		return failure(core.WrapCallError(core.ErrorTransport, err))
	}
	req.Header.Set("Content-Type", sse.ContentTypeJSON)
	req.Header.Set("Accept", sse.ContentTypeEventStream)

	c.logger.Debug("agent call", "endpoint", endpoint, "session_id", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure(c.classifyCallError(callCtx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(core.NewCallError(core.ErrorUpstream,
			"agent responded with status %d", resp.StatusCode))
	}

	content, err := sse.Aggregate(resp.Body)
	if err != nil {
		return failure(c.classifyCallError(callCtx, err))
	}
	return Result{Success: true, Content: content}
}

// classifyCallError maps a raw call failure into the error taxonomy. Deadline
// expiry wins over whatever the transport reported while the deadline fired.
func (c *Client) classifyCallError(ctx context.Context, err error) *core.CallError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return core.NewCallError(core.ErrorTimeout, "call exceeded wait bound: %v", err)
	}

	if ce, ok := core.AsCallError(err); ok {
		return ce
	}
	return core.WrapCallError(core.ErrorTransport, err)
}

func failure(ce *core.CallError) Result {
	return Result{Err: ce}
}

// errString renders a Result's failure for logs and reports.
func errString(r Result) string {
	if r.Err == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", r.Err.Kind, r.Err.Message)
}
