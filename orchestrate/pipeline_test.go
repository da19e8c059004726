package orchestrate

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestPipeline_HandsAggregateToNextStage(t *testing.T) {
	analyst := httptest.NewServer(echoAgent("analyst", nil))
	defer analyst.Close()
	writer := httptest.NewServer(echoAgent("writer", nil))
	defer writer.Close()

	p := NewPipeline("report", NewClient(), []Stage{
		{Name: "analyze", Endpoint: analyst.URL},
		{Name: "write", Endpoint: writer.URL, Frame: func(prev string) string {
			return "Draft a report from: " + prev
		}},
	})

	res := p.Run(context.Background(), "q3 numbers", "s-1")
	require.Equal(t, -1, res.FailedStage)
	require.Nil(t, res.Err)
	assert.Equal(t, "writer handled: Draft a report from: analyst handled: q3 numbers", res.Output)
	assert.Len(t, res.Stages, 2)
}

func TestPipeline_AbortsOnFailedStage(t *testing.T) {
	var thirdCalls atomic.Int32

	first := httptest.NewServer(echoAgent("first", nil))
	defer first.Close()
	second := httptest.NewServer(echoAgent("second", nil))
	second.Close() // stage two is unreachable
	third := httptest.NewServer(echoAgent("third", &thirdCalls))
	defer third.Close()

	p := NewPipeline("doomed", NewClient(), []Stage{
		{Name: "one", Endpoint: first.URL},
		{Name: "two", Endpoint: second.URL},
		{Name: "three", Endpoint: third.URL},
	})

	res := p.Run(context.Background(), "go", "s-1")
	require.NotNil(t, res.Err)
	assert.Equal(t, 1, res.FailedStage)
	assert.Equal(t, core.ErrorTransport, res.Err.Kind)
	assert.Len(t, res.Stages, 2, "stage three must never be reached")
	assert.Empty(t, res.Output)
	assert.Equal(t, int32(0), thirdCalls.Load())
}
