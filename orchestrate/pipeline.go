package orchestrate

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Stage is one step of a sequential pipeline.
type Stage struct {
	// Name identifies the stage in results and logs.
	Name string

	// Endpoint is the base URL of the agent service handling this stage.
	Endpoint string

	// Frame builds the stage's input from the previous stage's aggregate.
	// The first stage receives the pipeline input. A nil Frame passes the
	// text through unchanged.
	Frame func(previous string) string
}

// PipelineResult reports a pipeline run. On failure FailedStage holds the
// index of the aborting stage and Err its classified error; stages after it
// were never invoked. On success FailedStage is -1 and Output holds the final
// stage's aggregate.
type PipelineResult struct {
	Output      string
	Stages      []Result
	FailedStage int
	Err         *core.CallError
}

// Pipeline executes a fixed, ordered list of stages, handing each stage the
// fully materialized aggregate of the previous one.
type Pipeline struct {
	name   string
	client *Client
	stages []Stage
	logger logging.Logger
}

// NewPipeline constructs a Pipeline over the given stages.
func NewPipeline(name string, client *Client, stages []Stage, optFns ...func(o *PatternOptions)) *Pipeline {
	opts := patternOptions(optFns)
	return &Pipeline{
		name:   name,
		client: client,
		stages: stages,
		logger: opts.Logger,
	}
}

// Run drives the pipeline from the initial input. The stage count is fixed at
// composition time; a failure at stage k aborts before stage k+1 is issued.
func (p *Pipeline) Run(ctx context.Context, input, sessionID string) PipelineResult {
	result := PipelineResult{FailedStage: -1}

	current := input
	for i, stage := range p.stages {
		text := current
		if stage.Frame != nil {
			text = stage.Frame(current)
		}

		p.logger.Info("pipeline stage", "pipeline", p.name, "stage", stage.Name)
		res := p.client.Call(ctx, stage.Endpoint, text, sessionID)
		result.Stages = append(result.Stages, res)

		if !res.Success {
			p.logger.Error("pipeline aborted",
				"pipeline", p.name, "stage", stage.Name, "error", errString(res))
			result.FailedStage = i
			result.Err = res.Err
			return result
		}
		current = res.Content
	}

	result.Output = current
	return result
}

// PatternOptions carry the options shared by the composition patterns.
type PatternOptions struct {
	// Logger receives per-stage logs. Defaults to a no-op logger.
	Logger logging.Logger
}

func patternOptions(optFns []func(o *PatternOptions)) PatternOptions {
	opts := PatternOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrDefault(opts.Logger)
	return opts
}
