package orchestrate

import (
	"context"
	"sync"
)

// Call is one independent unit of a fan-out.
type Call struct {
	// Name identifies the call in results and logs.
	Name string

	// Endpoint is the base URL of the agent service receiving the call.
	Endpoint string

	// Message is the full input text for this call.
	Message string
}

// FanOut issues the calls concurrently and joins on all of them. The returned
// slice preserves issue order regardless of completion order, and partial
// success is reported per call rather than collapsing into an aggregate
// failure. The join is fixed-size; no work is spawned beyond len(calls).
func FanOut(ctx context.Context, client *Client, calls []Call, sessionID string) []Result {
	results := make([]Result, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			results[i] = client.Call(ctx, call.Endpoint, call.Message, sessionID)
		}(i, call)
	}
	wg.Wait()

	return results
}
