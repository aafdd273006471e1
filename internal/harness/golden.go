package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceJSON renders a trace as indented JSON for golden comparison. Field
// order is fixed by the TraceEvent struct, and every value in the trace is
// deterministic, so the bytes are stable across runs.
func TraceJSON(trace []TraceEvent) ([]byte, error) {
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode trace: %w", err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario, requires every assertion to hold, and
// compares the trace against testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, h *Harness, sc *Scenario) *Result {
	t.Helper()

	result, err := h.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("scenario %s failed: %v", sc.Name, err)
	}
	for _, failure := range result.Failures {
		t.Errorf("scenario %s: %s", sc.Name, failure)
	}

	data, err := TraceJSON(result.Trace)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, sc.Name, data)
	return result
}
