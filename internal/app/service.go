// Package app contains the study use cases: driving quiz sessions, flashcards,
// quiz history statistics, profile and display preferences.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"

	"physquiz-service/internal/domain"
	"physquiz-service/internal/quiz"
	"physquiz-service/internal/stats"
	"physquiz-service/internal/storage"
)

const (
	profileKey   = "userData"
	fontSizeKey  = "fontSize"
	fontStyleKey = "fontStyle"

	defaultFontSize  = 16
	defaultFontStyle = "system"
)

// QuestionSource loads categories, questions and the remote user record.
type QuestionSource interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id string) (domain.Category, error)
	Questions(ctx context.Context, categoryID string) ([]domain.Question, error)
	User(ctx context.Context) (domain.UserProfile, error)
}

// HistoryRecorder persists quiz results and serves the stored history.
type HistoryRecorder interface {
	Record(ctx context.Context, result domain.QuizResult) error
	History(ctx context.Context) ([]domain.QuizResult, error)
	Recent(ctx context.Context, n int) ([]domain.QuizResult, error)
}

// SessionState is a session snapshot extended with its identity and, once
// completed, the feedback line shown alongside the result.
type SessionState struct {
	SessionID  string `json:"sessionId"`
	CategoryID string `json:"categoryId"`
	quiz.State
	Feedback string `json:"feedback,omitempty"`
}

// StudyService owns the active quiz sessions and composes the question
// source, the result history and the key-value store.
type StudyService struct {
	source   QuestionSource
	recorder HistoryRecorder
	store    storage.Store
	opts     quiz.Options

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	id       string
	category string
	session  *quiz.Session
}

func NewStudyService(source QuestionSource, recorder HistoryRecorder, store storage.Store, opts quiz.Options) *StudyService {
	return &StudyService{
		source:   source,
		recorder: recorder,
		store:    store,
		opts:     opts,
		sessions: make(map[string]*sessionEntry),
	}
}

// Categories lists the quiz categories, annotated with their question counts.
func (s *StudyService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.source.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		questions, err := s.source.Questions(ctx, categories[i].ID)
		if errors.Is(err, domain.ErrNoQuestions) {
			continue
		}
		if err != nil {
			return nil, err
		}
		categories[i].QuestionCount = len(questions)
	}
	return categories, nil
}

// Category fetches a single category.
func (s *StudyService) Category(ctx context.Context, id string) (domain.Category, error) {
	return s.source.Category(ctx, id)
}

// Flashcards derives study cards from a category's questions.
func (s *StudyService) Flashcards(ctx context.Context, categoryID string) ([]domain.Flashcard, error) {
	questions, err := s.source.Questions(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	cards := make([]domain.Flashcard, 0, len(questions))
	for _, question := range questions {
		cards = append(cards, domain.Flashcard{
			ID:          question.ID,
			Front:       question.Text,
			Back:        question.Answer,
			Explanation: question.Explanation,
			MediaURL:    question.MediaURL,
		})
	}
	return cards, nil
}

// StartSession fetches the category's questions and opens a new session over
// them. When questionIDs is non-empty the set is narrowed to those questions.
func (s *StudyService) StartSession(ctx context.Context, categoryID string, questionIDs []string) (SessionState, error) {
	questions, err := s.source.Questions(ctx, categoryID)
	if err != nil {
		return SessionState{}, err
	}
	if len(questionIDs) > 0 {
		questions = filterByID(questions, questionIDs)
		if len(questions) == 0 {
			return SessionState{}, domain.ErrNoQuestions
		}
	}

	session, err := quiz.New(categoryID, questions, s.opts)
	if err != nil {
		return SessionState{}, err
	}

	entry := &sessionEntry{
		id:       uuid.NewString(),
		category: categoryID,
		session:  session,
	}
	s.mu.Lock()
	s.sessions[entry.id] = entry
	s.mu.Unlock()

	return s.snapshot(entry, session.State()), nil
}

// Session returns the current state of an active session.
func (s *StudyService) Session(ctx context.Context, sessionID string) (SessionState, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return SessionState{}, err
	}
	return s.snapshot(entry, entry.session.State()), nil
}

// SelectOption answers the current question of a session.
func (s *StudyService) SelectOption(ctx context.Context, sessionID, option string) (SessionState, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return SessionState{}, err
	}
	state, err := entry.session.SelectOption(option)
	return s.snapshot(entry, state), err
}

// Advance moves a session to its next question. When the advance completes
// the session, the result is recorded to history before the final state is
// returned and the session is discarded.
func (s *StudyService) Advance(ctx context.Context, sessionID string) (SessionState, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return SessionState{}, err
	}
	state, err := entry.session.Advance()
	if err != nil {
		return s.snapshot(entry, state), err
	}
	if state.Phase == quiz.PhaseCompleted {
		s.finalize(ctx, entry, state)
	}
	return s.snapshot(entry, state), nil
}

// Previous steps a session back for review.
func (s *StudyService) Previous(ctx context.Context, sessionID string) (SessionState, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return SessionState{}, err
	}
	state, err := entry.session.Previous()
	return s.snapshot(entry, state), err
}

// FinishEarly completes a session over its answered questions, records the
// result and discards the session. With nothing answered it fails with
// ErrNothingAnswered; callers confirm with the user and Abandon instead.
func (s *StudyService) FinishEarly(ctx context.Context, sessionID string) (SessionState, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return SessionState{}, err
	}
	state, err := entry.session.FinishEarly()
	if err != nil {
		return s.snapshot(entry, state), err
	}
	s.finalize(ctx, entry, state)
	return s.snapshot(entry, state), nil
}

// Abandon discards a session without recording anything.
func (s *StudyService) Abandon(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// finalize records the result and drops the completed session; the session
// is gone once its result is persisted. A failed write is logged only: the
// user still gets to see the result they just earned.
func (s *StudyService) finalize(ctx context.Context, entry *sessionEntry, state quiz.State) {
	if state.Result != nil {
		if err := s.recorder.Record(ctx, *state.Result); err != nil {
			log.Printf("save quiz result: %v", err)
		}
	}
	s.mu.Lock()
	delete(s.sessions, entry.id)
	s.mu.Unlock()
}

// OverallStats summarizes the stored history.
func (s *StudyService) OverallStats(ctx context.Context) (domain.OverallStats, error) {
	history, err := s.recorder.History(ctx)
	if err != nil {
		return domain.OverallStats{}, err
	}
	return stats.Overall(history), nil
}

// CategoryStats summarizes the stored history per category.
func (s *StudyService) CategoryStats(ctx context.Context) ([]domain.CategoryStats, error) {
	history, err := s.recorder.History(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByCategory(history), nil
}

// RecentResults returns up to n most recent results.
func (s *StudyService) RecentResults(ctx context.Context, n int) ([]domain.QuizResult, error) {
	return s.recorder.Recent(ctx, n)
}

// Profile returns the stored profile, falling back to the remote user record
// on first use (and caching it locally).
func (s *StudyService) Profile(ctx context.Context) (domain.UserProfile, error) {
	data, err := s.store.Get(ctx, profileKey)
	if err == nil {
		var profile domain.UserProfile
		if err := json.Unmarshal(data, &profile); err == nil {
			return profile, nil
		}
		log.Printf("stored profile unreadable, refetching")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return domain.UserProfile{}, err
	}

	profile, err := s.source.User(ctx)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if data, err := json.Marshal(profile); err == nil {
		if err := s.store.Set(ctx, profileKey, data); err != nil {
			log.Printf("cache profile: %v", err)
		}
	}
	return profile, nil
}

// SaveProfile validates and stores the profile.
func (s *StudyService) SaveProfile(ctx context.Context, profile domain.UserProfile) error {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)
	if _, err := mail.ParseAddress(profile.Email); err != nil {
		return domain.ErrInvalidEmail
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, profileKey, data)
}

// Preferences returns the stored display settings, with defaults for anything
// never saved.
func (s *StudyService) Preferences(ctx context.Context) (domain.Preferences, error) {
	prefs := domain.Preferences{FontSize: defaultFontSize, FontStyle: defaultFontStyle}

	if data, err := s.store.Get(ctx, fontSizeKey); err == nil {
		var size int
		if err := json.Unmarshal(data, &size); err == nil && size > 0 {
			prefs.FontSize = size
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return prefs, err
	}

	if data, err := s.store.Get(ctx, fontStyleKey); err == nil {
		var style string
		if err := json.Unmarshal(data, &style); err == nil && style != "" {
			prefs.FontStyle = style
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return prefs, err
	}
	return prefs, nil
}

// SavePreferences stores the display settings under their own keys.
func (s *StudyService) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	if prefs.FontSize <= 0 {
		prefs.FontSize = defaultFontSize
	}
	if prefs.FontStyle == "" {
		prefs.FontStyle = defaultFontStyle
	}

	size, err := json.Marshal(prefs.FontSize)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, fontSizeKey, size); err != nil {
		return err
	}
	style, err := json.Marshal(prefs.FontStyle)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, fontStyleKey, style)
}

func (s *StudyService) entry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entry, nil
}

func (s *StudyService) snapshot(entry *sessionEntry, state quiz.State) SessionState {
	out := SessionState{
		SessionID:  entry.id,
		CategoryID: entry.category,
		State:      state,
	}
	if state.Result != nil {
		out.Feedback = feedbackFor(state.Result.Percentage)
	}
	return out
}

func filterByID(questions []domain.Question, ids []string) []domain.Question {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[strings.TrimSpace(id)] = struct{}{}
	}
	out := make([]domain.Question, 0, len(ids))
	for _, question := range questions {
		if _, ok := wanted[question.ID]; ok {
			out = append(out, question)
		}
	}
	return out
}

// feedbackFor mirrors the score bands shown on the results screen.
func feedbackFor(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding! Excellent understanding!"
	case percentage >= 80:
		return "Great job! Very good knowledge!"
	case percentage >= 70:
		return "Good work! Keep it up!"
	case percentage >= 60:
		return "Not bad! Room for improvement."
	default:
		return "Keep practicing! You'll get better!"
	}
}
