package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios, "no scenario files found")

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			h := New(t.TempDir(), nil)
			RunWithGolden(t, h, sc)
		})
	}
}

func TestHarness_Run_ReportsAssertionFailures(t *testing.T) {
	sc := &Scenario{
		Name: "failing",
		Steps: []Step{
			{Attach: &AttachStep{Session: "a", Doc: "notes"}},
		},
		Assertions: []Assertion{
			{Type: "row_count", Session: "a", Want: 99},
		},
	}
	require.NoError(t, sc.Validate())

	h := New(t.TempDir(), nil)
	result, err := h.Run(context.Background(), sc)
	require.NoError(t, err)

	assert.False(t, result.Passed())
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "row_count")
}

func TestHarness_Run_DetachesEverythingOnExit(t *testing.T) {
	sc := &Scenario{
		Name: "cleanup",
		Steps: []Step{
			{Attach: &AttachStep{Session: "a", Doc: "notes"}},
			{Insert: &InsertStep{Session: "a", Entry: "x"}},
		},
	}
	require.NoError(t, sc.Validate())

	h := New(t.TempDir(), nil)
	result, err := h.Run(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.Passed())

	// Destroy is idempotent, so the deferred cleanup plus this call is fine.
	require.NoError(t, h.sessions["a"].sess.Destroy())
}

func TestTraceJSON_Stable(t *testing.T) {
	trace := []TraceEvent{
		{Seq: 1, Type: "attach", Session: "a", Doc: "notes"},
		{Seq: 2, Type: "synced", Session: "a", Rows: 1},
	}

	first, err := TraceJSON(trace)
	require.NoError(t, err)
	second, err := TraceJSON(trace)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, byte('\n'), first[len(first)-1])
}
