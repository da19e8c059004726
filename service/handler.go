package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/engine"
	"github.com/hupe1980/agentrelay/session"
	"github.com/hupe1980/agentrelay/sse"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"

	modeStream   = "stream"
	modeBuffered = "buffered"

	invocationIDHeader = "X-Invocation-Id"
)

// handleProcess serves POST /process in both response modes.
func (s *Service) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req core.AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if len(req.Input) == 0 {
		s.writeBadRequest(w, "input must not be empty")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = gonanoid.Must()
	}
	key := session.DeriveKey(sessionID, s.role)
	mode := modeBuffered
	if req.Streaming() {
		mode = modeStream
	}

	// Every run gets its own invocation id for log correlation; it is echoed
	// to the caller so failures can be traced across services.
	invocationID := core.NewID()
	w.Header().Set(invocationIDHeader, invocationID)

	start := time.Now()
	s.logger.Info("process request",
		"service", s.name, "invocation_id", invocationID,
		"session_id", sessionID, "mode", mode)

	ctx := r.Context()
	state, _, err := s.store.Load(ctx, key)
	if err != nil {
		s.logger.Error("state load failed",
			"invocation_id", invocationID, "key", key, "error", err)
		s.respondFailure(w, req, core.NewCallError(core.ErrorUpstream, "state load failed"))
		s.observe(mode, outcomeError, start)
		return
	}

	msgs := append(state.History, req.Input...)
	outputs, outcome := s.engine.Run(ctx, msgs, state.Engine)

	var reply string
	var engState map[string]any
	var runErr error
	if req.Streaming() {
		reply, engState, runErr = s.respondStream(w, outputs, outcome)
	} else {
		reply, engState, runErr = s.respondBuffered(w, outputs, outcome)
	}

	if runErr != nil {
		s.logger.Error("engine run failed",
			"service", s.name, "invocation_id", invocationID,
			"session_id", sessionID, "error", runErr)
		s.observe(mode, outcomeError, start)
		return
	}

	// Persist after the terminal sentinel, before the handler returns. A
	// cancelled request delivered nothing, so nothing is persisted either.
	if ctx.Err() == nil {
		s.persist(ctx, key, session.State{
			UserID:  req.UserID,
			History: append(msgs, core.NewAgentMessage(reply)),
			Engine:  engState,
		})
	}
	s.observe(mode, outcomeOK, start)
}

// respondStream frames engine outputs as SSE events as they become available.
// It returns the aggregated reply and the final engine state.
func (s *Service) respondStream(w http.ResponseWriter, outputs <-chan engine.Output, outcome <-chan engine.Outcome) (string, map[string]any, error) {
	sse.StreamHeaders(w.Header())
	w.WriteHeader(http.StatusOK)
	enc := sse.NewEncoder(w)

	var agg strings.Builder
	for out := range outputs {
		if out.Status != "" {
			s.encode(enc, core.Status{Value: out.Status})
		}
		if out.Text != "" {
			agg.WriteString(out.Text)
			s.encode(enc, core.Delta{Text: out.Text})
			s.metrics.events.Inc()
		}
	}

	oc := <-outcome
	if oc.Err != nil {
		s.encode(enc, core.ErrorEvent{Kind: core.ErrorUpstream, Message: oc.Err.Error()})
		s.encode(enc, core.Done{})
		return "", nil, oc.Err
	}
	s.encode(enc, core.Done{})
	return agg.String(), oc.State, nil
}

// respondBuffered drains the full event sequence through the codec's
// collector, waits for the terminal outcome, and emits one JSON document.
func (s *Service) respondBuffered(w http.ResponseWriter, outputs <-chan engine.Output, outcome <-chan engine.Outcome) (string, map[string]any, error) {
	var col sse.Collector
	for out := range outputs {
		if out.Status != "" {
			col.Add(core.Status{Value: out.Status})
		}
		if out.Text != "" {
			col.Add(core.Delta{Text: out.Text})
			s.metrics.events.Inc()
		}
	}

	oc := <-outcome
	if oc.Err != nil {
		col.Add(core.ErrorEvent{Kind: core.ErrorUpstream, Message: oc.Err.Error()})
	}
	col.Add(core.Done{})

	doc := col.Document()
	s.writeJSON(w, http.StatusOK, doc)
	if oc.Err != nil {
		return "", nil, oc.Err
	}
	return doc.Output[0].Text(), oc.State, nil
}

// persist writes the updated session state back to the store. Failures are
// logged only; the response has already been delivered.
func (s *Service) persist(ctx context.Context, key string, state session.State) {
	if err := s.store.Save(ctx, key, state); err != nil {
		s.logger.Error("state persist failed", "key", key, "error", err)
	}
}

// encode writes one frame, logging (not failing) on client disconnects.
func (s *Service) encode(enc *sse.Encoder, ev core.Event) {
	if err := enc.Encode(ev); err != nil {
		s.logger.Debug("frame write failed", "error", err)
	}
}

// respondFailure reports an in-band classified failure in the mode the caller
// asked for.
func (s *Service) respondFailure(w http.ResponseWriter, req core.AgentRequest, ce *core.CallError) {
	if req.Streaming() {
		sse.StreamHeaders(w.Header())
		w.WriteHeader(http.StatusOK)
		enc := sse.NewEncoder(w)
		s.encode(enc, core.ErrorEvent{Kind: ce.Kind, Message: ce.Message})
		s.encode(enc, core.Done{})
		return
	}
	s.writeJSON(w, http.StatusOK, sse.Document{Error: ce})
}

func (s *Service) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, sse.Document{
		Error: core.NewCallError(core.ErrorProtocol, "%s", msg),
	})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", sse.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("response write failed", "error", err)
	}
}

func (s *Service) observe(mode, outcome string, start time.Time) {
	s.metrics.requests.WithLabelValues(mode, outcome).Inc()
	s.metrics.duration.Observe(time.Since(start).Seconds())
}
