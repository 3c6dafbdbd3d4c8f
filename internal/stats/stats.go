// Package stats persists quiz results and derives summary statistics from
// the stored history.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"physquiz-service/internal/domain"
	"physquiz-service/internal/storage"
)

// HistoryKey is the single store key the result history lives under.
const HistoryKey = "quizHistory"

// Recorder appends quiz results to the persisted history. History is stored
// most-recent-first: Record prepends, so Recent reads a prefix. The
// read-modify-write of the history key is a critical section guarded by mu.
type Recorder struct {
	store storage.Store
	mu    sync.Mutex
}

func NewRecorder(store storage.Store) *Recorder {
	return &Recorder{store: store}
}

// Record prepends the result to the stored history. The write completes
// before Record returns, so callers can show the result knowing it is saved.
func (r *Recorder) Record(ctx context.Context, result domain.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.loadLocked(ctx)
	updated := make([]domain.QuizResult, 0, len(history)+1)
	updated = append(updated, result)
	updated = append(updated, history...)

	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := r.store.Set(ctx, HistoryKey, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// History returns all stored results, most recent first. A missing or
// unreadable history is an empty one, never an error.
func (r *Recorder) History(ctx context.Context) ([]domain.QuizResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx), nil
}

// Recent returns up to n of the most recent results.
func (r *Recorder) Recent(ctx context.Context, n int) ([]domain.QuizResult, error) {
	history, err := r.History(ctx)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > len(history) {
		n = len(history)
	}
	return history[:n], nil
}

func (r *Recorder) loadLocked(ctx context.Context) []domain.QuizResult {
	data, err := r.store.Get(ctx, HistoryKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("read quiz history: %v", err)
		return nil
	}
	var history []domain.QuizResult
	if err := json.Unmarshal(data, &history); err != nil {
		log.Printf("quiz history unreadable, treating as empty: %v", err)
		return nil
	}
	return history
}

// Overall summarizes the whole history. Empty history yields zeros.
func Overall(history []domain.QuizResult) domain.OverallStats {
	if len(history) == 0 {
		return domain.OverallStats{}
	}
	sum := 0
	for _, result := range history {
		sum += result.Percentage
	}
	return domain.OverallStats{
		TotalQuizzes: len(history),
		AverageScore: roundMean(sum, len(history)),
	}
}

// ByCategory aggregates attempts and mean percentage per category, ordered by
// descending average. Ties keep first-encountered order (stable sort).
func ByCategory(history []domain.QuizResult) []domain.CategoryStats {
	sums := make(map[string]int)
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, result := range history {
		if _, seen := counts[result.CategoryID]; !seen {
			order = append(order, result.CategoryID)
		}
		counts[result.CategoryID]++
		sums[result.CategoryID] += result.Percentage
	}

	out := make([]domain.CategoryStats, 0, len(order))
	for _, id := range order {
		out = append(out, domain.CategoryStats{
			CategoryID:        id,
			Attempts:          counts[id],
			AveragePercentage: roundMean(sums[id], counts[id]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AveragePercentage > out[j].AveragePercentage
	})
	return out
}

func roundMean(sum, count int) int {
	return int(math.Round(float64(sum) / float64(count)))
}
