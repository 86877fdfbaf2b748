package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"tubenotes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(n int) []models.SummarizationTask {
	tasks := make([]models.SummarizationTask, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, models.SummarizationTask{
			ID:     fmt.Sprintf("vid%02d", i),
			Prompt: fmt.Sprintf("summarize transcript %d", i),
		})
	}
	return tasks
}

// echoGenerate answers every task in the submitted batch with "summary of
// <id>", exercising the success path end to end.
func echoGenerate(t *testing.T) func(ctx context.Context, prompt string) (string, error) {
	return func(ctx context.Context, prompt string) (string, error) {
		start := strings.LastIndex(prompt, "[")
		require.NotEqual(t, -1, start, "prompt must carry the serialized task list")

		var batch []models.SummarizationTask
		require.NoError(t, json.Unmarshal([]byte(prompt[start:]), &batch))

		results := make([]models.SummarizationResult, 0, len(batch))
		for _, task := range batch {
			results = append(results, models.SummarizationResult{
				ID:     task.ID,
				Result: "summary of " + task.ID,
			})
		}
		payload, err := json.Marshal(results)
		require.NoError(t, err)
		return "```json\n" + string(payload) + "\n```", nil
	}
}

func TestProcessBatchAllTasksAnswered(t *testing.T) {
	s := newSummarizer("gemini-2.5-flash", 4)

	var calls int
	inner := echoGenerate(t)
	s.generate = func(ctx context.Context, prompt string) (string, error) {
		calls++
		return inner(ctx, prompt)
	}

	tasks := makeTasks(10)
	results := s.ProcessBatch(context.Background(), tasks)

	require.Len(t, results, len(tasks), "every task id must be answered")
	assert.Equal(t, 3, calls, "10 tasks at batch size 4 means 3 model calls")
	for i, r := range results {
		assert.Equal(t, tasks[i].ID, r.ID, "results keep task order")
		assert.Equal(t, "summary of "+tasks[i].ID, r.Result)
	}
}

func TestProcessBatchParseFailureIsIsolated(t *testing.T) {
	s := newSummarizer("gemini-2.5-flash", 3)

	var calls int
	inner := echoGenerate(t)
	s.generate = func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 2 {
			return "I could not produce structured output, sorry.", nil
		}
		return inner(ctx, prompt)
	}

	tasks := makeTasks(9)
	results := s.ProcessBatch(context.Background(), tasks)
	require.Len(t, results, len(tasks))

	for i, r := range results {
		if i >= 3 && i < 6 {
			assert.True(t, strings.HasPrefix(r.Result, "Error processing batch response"),
				"task %s in the failed batch must carry a synthesized error", r.ID)
		} else {
			assert.Equal(t, "summary of "+r.ID, r.Result,
				"task %s outside the failed batch must be unaffected", r.ID)
		}
	}
}

func TestProcessBatchCallFailureSynthesizesErrors(t *testing.T) {
	s := newSummarizer("gemini-2.5-flash", 30)
	s.generate = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("rate limited")
	}

	tasks := makeTasks(2)
	results := s.ProcessBatch(context.Background(), tasks)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.Result, "Error processing batch response")
		assert.Contains(t, r.Result, "rate limited")
	}
}

func TestProcessBatchOmissionAndUnknownIDs(t *testing.T) {
	s := newSummarizer("gemini-2.5-flash", 30)
	s.generate = func(ctx context.Context, prompt string) (string, error) {
		// Answers one submitted task, skips the other, and adds an id that
		// was never submitted.
		return `[{"id": "vid00", "result": "ok"}, {"id": "intruder", "result": "ignored"}]`, nil
	}

	results := s.ProcessBatch(context.Background(), makeTasks(2))
	require.Len(t, results, 1, "omitted ids stay absent, unknown ids are dropped")
	assert.Equal(t, "vid00", results[0].ID)
	assert.Equal(t, "ok", results[0].Result)
}

func TestProcessBatchEmptyInput(t *testing.T) {
	s := newSummarizer("gemini-2.5-flash", 30)
	s.generate = func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("no model call expected for empty input")
		return "", nil
	}

	assert.Empty(t, s.ProcessBatch(context.Background(), nil))
}

func TestParseBatchResponseFormats(t *testing.T) {
	want := []models.SummarizationResult{{ID: "a", Result: "r"}}
	payload := `[{"id": "a", "result": "r"}]`

	tests := []struct {
		name     string
		response string
	}{
		{"bare array", payload},
		{"fenced json block", "```json\n" + payload + "\n```"},
		{"fenced block without tag", "```\n" + payload + "\n```"},
		{"json prefix marker", "json " + payload},
		{"prose wrapped array", "Here are the results:\n" + payload + "\nDone."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBatchResponse(tt.response)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseBatchResponseRejectsGarbage(t *testing.T) {
	_, err := parseBatchResponse("no structure here at all")
	assert.Error(t, err)
}
