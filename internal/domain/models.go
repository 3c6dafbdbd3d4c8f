package domain

import (
	"strings"
	"time"
)

// Category groups questions under a physiology topic.
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"questionCount,omitempty"`
}

// Question models a single multiple-choice item fetched from the question API.
// Answer is matched against Options by normalized string equality.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
	CategoryID  string   `json:"categoryId"`
	MediaURL    string   `json:"mediaUrl,omitempty"`
}

// QuizResult is one persisted history entry for a finished session.
type QuizResult struct {
	CategoryID     string    `json:"categoryId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total"`
	Percentage     int       `json:"percentage"`
	Date           time.Time `json:"date"`
}

// OverallStats summarizes the whole quiz history.
type OverallStats struct {
	TotalQuizzes int `json:"totalQuizzes"`
	AverageScore int `json:"averageScore"`
}

// CategoryStats summarizes history entries for one category.
type CategoryStats struct {
	CategoryID        string `json:"categoryId"`
	Attempts          int    `json:"attempts"`
	AveragePercentage int    `json:"averagePercentage"`
}

// UserProfile holds the locally stored profile details.
type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Preferences are the display settings persisted on device.
type Preferences struct {
	FontSize  int    `json:"fontSize"`
	FontStyle string `json:"fontStyle"`
}

// Flashcard is the study-mode view of a question.
type Flashcard struct {
	ID          string `json:"id"`
	Front       string `json:"front"`
	Back        string `json:"back"`
	Explanation string `json:"explanation,omitempty"`
	MediaURL    string `json:"mediaUrl,omitempty"`
}

// Normalize prepares a string for answer comparison: trim surrounding
// whitespace, then lowercase. No other folding is applied.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
