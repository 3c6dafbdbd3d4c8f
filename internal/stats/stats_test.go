package stats

import (
	"context"
	"testing"
	"time"

	"physquiz-service/internal/domain"
	"physquiz-service/internal/storage"
)

func result(category string, percentage int, day int) domain.QuizResult {
	return domain.QuizResult{
		CategoryID:     category,
		Score:          percentage / 10,
		TotalQuestions: 10,
		Percentage:     percentage,
		Date:           time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordPrependsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder(storage.NewMemoryStore())

	first := result("44", 50, 1)
	second := result("45", 80, 2)
	if err := recorder.Record(ctx, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := recorder.Record(ctx, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	history, err := recorder.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].CategoryID != second.CategoryID || history[1].CategoryID != first.CategoryID {
		t.Fatalf("expected most-recent-first ordering, got %+v", history)
	}
}

func TestRecordRoundTripsAllFields(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder(storage.NewMemoryStore())

	want := domain.QuizResult{
		CategoryID:     "49",
		Score:          3,
		TotalQuestions: 5,
		Percentage:     60,
		Date:           time.Date(2025, 6, 1, 8, 15, 30, 0, time.UTC),
	}
	if err := recorder.Record(ctx, want); err != nil {
		t.Fatalf("record: %v", err)
	}

	history, _ := recorder.History(ctx)
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	if !history[0].Date.Equal(want.Date) {
		t.Fatalf("date mismatch: got %v want %v", history[0].Date, want.Date)
	}
	history[0].Date = want.Date
	if history[0] != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", history[0], want)
	}
}

func TestCorruptHistoryTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	if err := store.Set(ctx, HistoryKey, []byte("{not json")); err != nil {
		t.Fatalf("seed corrupt history: %v", err)
	}

	recorder := NewRecorder(store)
	history, err := recorder.History(ctx)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v err=%v", history, err)
	}

	// The write must still succeed over the corrupt entry.
	if err := recorder.Record(ctx, result("44", 70, 3)); err != nil {
		t.Fatalf("record over corrupt history: %v", err)
	}
	history, _ = recorder.History(ctx)
	if len(history) != 1 {
		t.Fatalf("expected 1 entry after rewrite, got %d", len(history))
	}
}

func TestRecent(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder(storage.NewMemoryStore())
	for day := 1; day <= 5; day++ {
		if err := recorder.Record(ctx, result("44", day*10, day)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := recorder.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	if recent[0].Percentage != 50 || recent[2].Percentage != 30 {
		t.Fatalf("expected newest first, got %+v", recent)
	}

	all, _ := recorder.Recent(ctx, 50)
	if len(all) != 5 {
		t.Fatalf("expected clamp to history length, got %d", len(all))
	}
}

func TestOverallEmptyHistory(t *testing.T) {
	got := Overall(nil)
	if got.TotalQuizzes != 0 || got.AverageScore != 0 {
		t.Fatalf("expected zeros for empty history, got %+v", got)
	}
}

func TestOverallAverages(t *testing.T) {
	history := []domain.QuizResult{
		result("44", 50, 1),
		result("45", 80, 2),
		result("44", 75, 3),
	}
	got := Overall(history)
	if got.TotalQuizzes != 3 {
		t.Fatalf("expected 3 quizzes, got %d", got.TotalQuizzes)
	}
	// mean(50, 80, 75) = 68.33 -> 68
	if got.AverageScore != 68 {
		t.Fatalf("expected rounded average 68, got %d", got.AverageScore)
	}
}

func TestByCategoryOrdersByAverageDesc(t *testing.T) {
	history := []domain.QuizResult{
		result("44", 50, 1),
		result("45", 90, 2),
		result("44", 70, 3),
		result("46", 90, 4),
	}
	got := ByCategory(history)
	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(got))
	}
	// 45 and 46 both average 90; 45 was encountered first and must stay first.
	if got[0].CategoryID != "45" || got[1].CategoryID != "46" || got[2].CategoryID != "44" {
		t.Fatalf("unexpected ordering: %+v", got)
	}
	if got[2].Attempts != 2 || got[2].AveragePercentage != 60 {
		t.Fatalf("unexpected aggregate for category 44: %+v", got[2])
	}
}
