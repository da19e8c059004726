package orchestrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Worker is one delegated role in a manager-worker composition.
type Worker struct {
	// Name identifies the worker in results and logs.
	Name string

	// Endpoint is the base URL of the worker's agent service.
	Endpoint string

	// Frame builds the worker's input from the manager's analysis. The
	// analysis text itself is passed verbatim; Frame only adds the worker's
	// instructional framing around it. A nil Frame forwards the analysis
	// as-is.
	Frame func(analysis string) string
}

// ManagerWorkerOptions configure a ManagerWorker.
type ManagerWorkerOptions struct {
	// Parallel runs the workers as a fan-out instead of sequentially.
	Parallel bool

	// AnalysisFrame builds the manager's first input from the original task.
	// A nil frame passes the task through unchanged.
	AnalysisFrame func(task string) string

	// SynthesisFrame builds the manager's final input from the analysis and
	// the worker outputs. A nil frame uses a plain sectioned layout.
	SynthesisFrame func(analysis string, workerOutputs []string) string

	// Logger receives per-phase logs. Defaults to a no-op logger.
	Logger logging.Logger
}

// ManagerWorkerResult reports a delegation run phase by phase. Err is set when
// any phase failed; later phases were not issued in that case.
type ManagerWorkerResult struct {
	Analysis  string
	Workers   []Result
	Synthesis string
	Err       *core.CallError
}

// ManagerWorker realizes the delegation pattern: one coordinating call
// produces an analysis, each worker receives that analysis as shared context,
// and a final call on the manager synthesizes the worker outputs. All calls
// share one session id; role isolation comes from the services' namespaced
// memory keys.
type ManagerWorker struct {
	managerEndpoint string
	workers         []Worker
	client          *Client
	opts            ManagerWorkerOptions
}

// NewManagerWorker constructs a ManagerWorker coordinated by the agent at
// managerEndpoint.
func NewManagerWorker(client *Client, managerEndpoint string, workers []Worker, optFns ...func(o *ManagerWorkerOptions)) *ManagerWorker {
	opts := ManagerWorkerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrDefault(opts.Logger)
	return &ManagerWorker{
		managerEndpoint: managerEndpoint,
		workers:         workers,
		client:          client,
		opts:            opts,
	}
}

// Run executes the three phases. A failed analysis skips the workers; any
// failed worker skips synthesis, since a synthesis over partial worker output
// would be an ambiguous aggregate.
func (m *ManagerWorker) Run(ctx context.Context, task, sessionID string) ManagerWorkerResult {
	var result ManagerWorkerResult

	analysisInput := task
	if m.opts.AnalysisFrame != nil {
		analysisInput = m.opts.AnalysisFrame(task)
	}

	m.opts.Logger.Info("delegation analysis", "manager", m.managerEndpoint)
	analysis := m.client.Call(ctx, m.managerEndpoint, analysisInput, sessionID)
	if !analysis.Success {
		result.Err = analysis.Err
		return result
	}
	result.Analysis = analysis.Content

	result.Workers = m.runWorkers(ctx, analysis.Content, sessionID)
	outputs := make([]string, 0, len(result.Workers))
	for i, wr := range result.Workers {
		if !wr.Success {
			m.opts.Logger.Error("delegation worker failed",
				"worker", m.workers[i].Name, "error", errString(wr))
			result.Err = wr.Err
			return result
		}
		outputs = append(outputs, wr.Content)
	}

	m.opts.Logger.Info("delegation synthesis", "manager", m.managerEndpoint)
	synthesis := m.client.Call(ctx, m.managerEndpoint, m.synthesisInput(analysis.Content, outputs), sessionID)
	if !synthesis.Success {
		result.Err = synthesis.Err
		return result
	}
	result.Synthesis = synthesis.Content

	return result
}

func (m *ManagerWorker) runWorkers(ctx context.Context, analysis, sessionID string) []Result {
	if m.opts.Parallel {
		calls := make([]Call, len(m.workers))
		for i, w := range m.workers {
			calls[i] = Call{Name: w.Name, Endpoint: w.Endpoint, Message: workerInput(w, analysis)}
		}
		return FanOut(ctx, m.client, calls, sessionID)
	}

	results := make([]Result, 0, len(m.workers))
	for _, w := range m.workers {
		res := m.client.Call(ctx, w.Endpoint, workerInput(w, analysis), sessionID)
		results = append(results, res)
		if !res.Success {
			break
		}
	}
	return results
}

func (m *ManagerWorker) synthesisInput(analysis string, outputs []string) string {
	if m.opts.SynthesisFrame != nil {
		return m.opts.SynthesisFrame(analysis, outputs)
	}

	var b strings.Builder
	b.WriteString("Original analysis:\n")
	b.WriteString(analysis)
	for i, out := range outputs {
		fmt.Fprintf(&b, "\n\nWorker %d result:\n%s", i+1, out)
	}
	b.WriteString("\n\nCombine the analysis and worker results into a final answer.")
	return b.String()
}

func workerInput(w Worker, analysis string) string {
	if w.Frame != nil {
		return w.Frame(analysis)
	}
	return analysis
}
