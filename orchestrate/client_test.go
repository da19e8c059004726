package orchestrate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/sse"
)

// echoAgent streams "<name> handled: <input>" for every /process request and
// optionally counts invocations.
func echoAgent(name string, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		var req core.AgentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sse.StreamHeaders(w.Header())
		enc := sse.NewEncoder(w)
		_ = enc.Encode(core.Delta{Text: name + " handled: " + req.Input[len(req.Input)-1].Text()})
		_ = enc.Encode(core.Done{})
	}
}

func TestClient_CallAggregatesStream(t *testing.T) {
	srv := httptest.NewServer(echoAgent("analyst", nil))
	defer srv.Close()

	res := NewClient().Call(context.Background(), srv.URL, "review this", "s-1")
	require.True(t, res.Success)
	assert.Equal(t, "analyst handled: review this", res.Content)
	assert.Nil(t, res.Err)
}

func TestClient_TransportErrorClassified(t *testing.T) {
	srv := httptest.NewServer(echoAgent("analyst", nil))
	srv.Close() // nothing listening anymore

	res := NewClient().Call(context.Background(), srv.URL, "hi", "s-1")
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, core.ErrorTransport, res.Err.Kind)
}

func TestClient_TimeoutClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(func(o *Options) { o.Timeout = 50 * time.Millisecond })
	res := client.Call(context.Background(), srv.URL, "hi", "s-1")
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, core.ErrorTimeout, res.Err.Kind)
}

func TestClient_StreamWithoutDoneIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sse.StreamHeaders(w.Header())
		enc := sse.NewEncoder(w)
		_ = enc.Encode(core.Delta{Text: "partial"})
		// handler returns without the terminal sentinel
	}))
	defer srv.Close()

	res := NewClient().Call(context.Background(), srv.URL, "hi", "s-1")
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, core.ErrorProtocol, res.Err.Kind)
	assert.Empty(t, res.Content, "a truncated aggregate must not leak into the result")
}

func TestClient_ErrorEventIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sse.StreamHeaders(w.Header())
		enc := sse.NewEncoder(w)
		_ = enc.Encode(core.ErrorEvent{Kind: core.ErrorUpstream, Message: "engine exploded"})
		_ = enc.Encode(core.Done{})
	}))
	defer srv.Close()

	res := NewClient().Call(context.Background(), srv.URL, "hi", "s-1")
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, core.ErrorUpstream, res.Err.Kind)
	assert.Contains(t, res.Err.Message, "engine exploded")
}

func TestClient_NonOKStatusIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := NewClient().Call(context.Background(), srv.URL, "hi", "s-1")
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, core.ErrorUpstream, res.Err.Kind)
}

func TestClient_CallerCancellationPropagates(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background connection read;
		// otherwise r.Context() is never cancelled when the client disconnects
		// and this handler (and srv.Close) would block forever.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	res := NewClient().Call(ctx, srv.URL, "hi", "s-1")
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, core.ErrorTransport, res.Err.Kind)
}

func TestWaitReady(t *testing.T) {
	srv := httptest.NewServer(echoAgent("analyst", nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, WaitReady(ctx, srv.Listener.Addr().String()))
}

func TestWaitReady_GivesUpWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := WaitReady(ctx, "127.0.0.1:1") // reserved port, nothing listens
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
