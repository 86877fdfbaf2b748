package models

// SummarizationTask pairs a video ID with the full prompt to run for it.
// One task is built per video with a non-empty transcript.
type SummarizationTask struct {
	ID     string `json:"id"`
	Prompt string `json:"task"`
}

// SummarizationResult carries the model output for one task. The summarizer
// guarantees that every submitted task ID appears in its output either as a
// real result or as a synthesized batch-error result; an ID absent from a
// well-formed response is surfaced to the caller as an omission instead.
type SummarizationResult struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}
