// Package ai turns prepared summarization tasks into results by batching
// them against the Gemini API, one request per batch.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tubenotes/internal/models"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultBatchSize = 30

const batchInstruction = `You will receive a JSON array of tasks. Each task has an "id" and a "task" field containing a prompt with a video transcript.

Process every task independently and respond with ONLY a JSON array in this exact form, one entry per task, preserving the ids:

[{"id": "<task id>", "result": "<processed text>"}]

Do not add commentary outside the JSON array.`

// Summarizer batches tasks against a generative-text model. Batches are
// independent units of work and of failure: one bad batch never affects
// another.
type Summarizer struct {
	model     string
	batchSize int

	// generate issues one model call; swapped out in tests.
	generate func(ctx context.Context, prompt string) (string, error)
}

func NewSummarizer(ctx context.Context, apiKey, model string, batchSize int) (*Summarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s := newSummarizer(model, batchSize)
	s.generate = func(ctx context.Context, prompt string) (string, error) {
		parts := []*genai.Part{genai.NewPartFromText(prompt)}
		contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

		result, err := client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", err
		}
		text := result.Text()
		if text == "" {
			return "", fmt.Errorf("empty response from model")
		}
		return text, nil
	}
	return s, nil
}

func newSummarizer(model string, batchSize int) *Summarizer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Summarizer{model: model, batchSize: batchSize}
}

// ProcessBatch partitions tasks into contiguous batches and issues one model
// call per batch. On a parse or call failure every task of that batch gets a
// synthesized error result, so no task is ever silently lost. Within a
// well-formed response, entries are matched to tasks strictly by id:
// unknown ids are ignored and omitted ids stay absent for the caller to
// detect.
func (s *Summarizer) ProcessBatch(ctx context.Context, tasks []models.SummarizationTask) []models.SummarizationResult {
	results := make([]models.SummarizationResult, 0, len(tasks))

	for start := 0; start < len(tasks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		results = append(results, s.processOne(ctx, tasks[start:end])...)
	}

	return results
}

// BatchSize reports the configured batch size.
func (s *Summarizer) BatchSize() int {
	return s.batchSize
}

func (s *Summarizer) processOne(ctx context.Context, batch []models.SummarizationTask) []models.SummarizationResult {
	log := logrus.WithField("batch_size", len(batch))

	prompt, err := buildBatchPrompt(batch)
	if err != nil {
		log.WithError(err).Error("Failed to build batch prompt")
		return errorResults(batch, err)
	}

	response, err := s.generate(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Batch model call failed")
		return errorResults(batch, err)
	}

	parsed, err := parseBatchResponse(response)
	if err != nil {
		log.WithError(err).Error("Failed to parse batch response")
		return errorResults(batch, err)
	}

	byID := make(map[string]string, len(parsed))
	for _, entry := range parsed {
		byID[entry.ID] = entry.Result
	}

	// Match strictly by id, in task order. Response entries for unknown ids
	// are dropped; tasks the response omitted are left missing so the
	// caller can surface them.
	results := make([]models.SummarizationResult, 0, len(batch))
	for _, task := range batch {
		result, ok := byID[task.ID]
		if !ok {
			log.WithField("task_id", task.ID).Warn("Batch response omitted task")
			continue
		}
		results = append(results, models.SummarizationResult{ID: task.ID, Result: result})
	}
	return results
}

func buildBatchPrompt(batch []models.SummarizationTask) (string, error) {
	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return batchInstruction + "\n\n" + string(payload), nil
}

// parseBatchResponse pulls a JSON result array out of free-form model text.
// The array may be wrapped in a fenced code block or prefixed with a bare
// "json" marker.
func parseBatchResponse(response string) ([]models.SummarizationResult, error) {
	payload := extractPayload(response)

	var results []models.SummarizationResult
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		// The model sometimes pads the payload with prose; retry on the
		// outermost bracketed slice before giving up.
		start := strings.Index(payload, "[")
		end := strings.LastIndex(payload, "]")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no JSON array in response: %w", err)
		}
		if retryErr := json.Unmarshal([]byte(payload[start:end+1]), &results); retryErr != nil {
			return nil, fmt.Errorf("unmarshal batch response: %w", retryErr)
		}
	}
	return results, nil
}

func extractPayload(response string) string {
	if start := strings.Index(response, "```"); start != -1 {
		rest := response[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end != -1 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}

	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "json") {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "json"))
	}
	return trimmed
}

func errorResults(batch []models.SummarizationTask, cause error) []models.SummarizationResult {
	results := make([]models.SummarizationResult, 0, len(batch))
	for _, task := range batch {
		results = append(results, models.SummarizationResult{
			ID:     task.ID,
			Result: fmt.Sprintf("Error processing batch response: %v", cause),
		})
	}
	return results
}
