package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// NoteTracker keeps a persistent record of videos that already have a saved
// note, so repeated runs over the same channel skip them.
type NoteTracker struct {
	filePath      string
	summarizedIDs map[string]time.Time
	mu            sync.RWMutex
	maxAge        time.Duration
}

// TrackedNote represents one summarized video.
type TrackedNote struct {
	VideoID      string    `json:"video_id"`
	SummarizedAt time.Time `json:"summarized_at"`
}

// NewNoteTracker opens (or creates) the tracker store under dataDir. Entries
// older than maxAge are pruned on load; a zero maxAge keeps entries forever.
func NewNoteTracker(dataDir string, maxAge time.Duration) (*NoteTracker, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tracker := &NoteTracker{
		filePath:      filepath.Join(dataDir, "summarized_videos.json"),
		summarizedIDs: make(map[string]time.Time),
		maxAge:        maxAge,
	}

	if err := tracker.load(); err != nil {
		return nil, fmt.Errorf("failed to load note tracker data: %w", err)
	}
	tracker.cleanup()

	return tracker, nil
}

// IsSummarized reports whether a video already has a recent note.
func (nt *NoteTracker) IsSummarized(videoID string) bool {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	summarizedAt, exists := nt.summarizedIDs[videoID]
	if !exists {
		return false
	}
	if nt.maxAge == 0 {
		return true
	}
	return time.Since(summarizedAt) < nt.maxAge
}

// MarkSummarized records that a video's note was saved.
func (nt *NoteTracker) MarkSummarized(videoID string) error {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	nt.summarizedIDs[videoID] = time.Now()
	return nt.save()
}

// Count returns the number of tracked videos.
func (nt *NoteTracker) Count() int {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	return len(nt.summarizedIDs)
}

func (nt *NoteTracker) cleanup() {
	if nt.maxAge == 0 {
		return
	}
	cutoff := time.Now().Add(-nt.maxAge)
	for videoID, summarizedAt := range nt.summarizedIDs {
		if summarizedAt.Before(cutoff) {
			delete(nt.summarizedIDs, videoID)
		}
	}
}

func (nt *NoteTracker) load() error {
	file, err := os.Open(nt.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open tracker file: %w", err)
	}
	defer file.Close()

	var tracked []TrackedNote
	if err := json.NewDecoder(file).Decode(&tracked); err != nil {
		return fmt.Errorf("failed to decode tracker data: %w", err)
	}

	for _, tn := range tracked {
		nt.summarizedIDs[tn.VideoID] = tn.SummarizedAt
	}
	return nil
}

func (nt *NoteTracker) save() error {
	tracked := make([]TrackedNote, 0, len(nt.summarizedIDs))
	for videoID, summarizedAt := range nt.summarizedIDs {
		tracked = append(tracked, TrackedNote{VideoID: videoID, SummarizedAt: summarizedAt})
	}

	file, err := os.Create(nt.filePath)
	if err != nil {
		return fmt.Errorf("failed to create tracker file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tracked)
}
