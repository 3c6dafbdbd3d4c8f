package quiz

import (
	"math"
	"sync"
	"time"

	"physquiz-service/internal/domain"
)

// Phase describes where a session is in its lifecycle.
type Phase string

const (
	// PhaseInProgress: the current question has not been answered yet.
	PhaseInProgress Phase = "in_progress"
	// PhaseAwaitingAdvance: the current question is answered, next not pressed.
	PhaseAwaitingAdvance Phase = "awaiting_advance"
	// PhaseCompleted: the session is over and a result has been derived.
	PhaseCompleted Phase = "completed"
)

// Options controls session behavior variants.
type Options struct {
	// RequireAnswerToAdvance rejects Advance on an unanswered question.
	RequireAnswerToAdvance bool
	// ShuffleOptions randomizes option order once at session start.
	ShuffleOptions bool
}

// State is a snapshot of the session for the presentation layer. Correctness
// details of the current question are only populated once it has been answered.
type State struct {
	Phase           Phase              `json:"phase"`
	Index           int                `json:"index"`
	Total           int                `json:"total"`
	Question        string             `json:"question,omitempty"`
	Options         []string           `json:"options,omitempty"`
	MediaURL        string             `json:"mediaUrl,omitempty"`
	Answered        bool               `json:"answered"`
	SelectedOption  string             `json:"selectedOption,omitempty"`
	Correct         bool               `json:"correct,omitempty"`
	CorrectAnswer   string             `json:"correctAnswer,omitempty"`
	Explanation     string             `json:"explanation,omitempty"`
	Score           int                `json:"score"`
	PercentComplete int                `json:"percentComplete"`
	Result          *domain.QuizResult `json:"result,omitempty"`
}

// Session runs one attempt at a fixed, ordered set of questions. The question
// list is set once at construction and never mutated; answers are recorded at
// most once per question and the first answer is final.
type Session struct {
	mu        sync.Mutex
	category  string
	questions []domain.Question
	answers   []string
	answered  []bool
	correct   []bool
	current   int
	score     int
	completed bool
	result    *domain.QuizResult
	opts      Options
	now       func() time.Time
}

// New validates and fixes the question set for a session. It fails closed:
// an empty set or a question whose answer matches no option is rejected so a
// session can never enter progress with nothing to ask.
func New(categoryID string, questions []domain.Question, opts Options) (*Session, error) {
	return newWithClock(categoryID, questions, opts, time.Now)
}

func newWithClock(categoryID string, questions []domain.Question, opts Options, now func() time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	fixed := make([]domain.Question, len(questions))
	copy(fixed, questions)
	for i := range fixed {
		if fixed[i].Text == "" || domain.Normalize(fixed[i].Answer) == "" {
			return nil, domain.ErrMalformedQuestion
		}
		prepared := prepareOptions(fixed[i], opts.ShuffleOptions)
		if len(prepared) < 2 {
			return nil, domain.ErrMalformedQuestion
		}
		fixed[i].Options = prepared
	}

	return &Session{
		category:  categoryID,
		questions: fixed,
		answers:   make([]string, len(fixed)),
		answered:  make([]bool, len(fixed)),
		correct:   make([]bool, len(fixed)),
		opts:      opts,
		now:       now,
	}, nil
}

// SelectOption records the answer for the current question. The comparison is
// normalized (trim + lowercase) on both sides; a correct match increments the
// score exactly once. Re-answering is rejected.
func (s *Session) SelectOption(option string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return s.stateLocked(), domain.ErrSessionCompleted
	}
	if s.answered[s.current] {
		return s.stateLocked(), domain.ErrAlreadyAnswered
	}

	question := s.questions[s.current]
	found := false
	for _, opt := range question.Options {
		if domain.Normalize(opt) == domain.Normalize(option) {
			found = true
			break
		}
	}
	if !found {
		return s.stateLocked(), domain.ErrOptionNotFound
	}

	s.answers[s.current] = option
	s.answered[s.current] = true
	if domain.Normalize(option) == domain.Normalize(question.Answer) {
		s.correct[s.current] = true
		s.score++
	}
	return s.stateLocked(), nil
}

// Advance moves to the next question, or completes the session when the last
// question is advanced past. Completion derives the final result over the full
// assigned question set.
func (s *Session) Advance() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return s.stateLocked(), domain.ErrSessionCompleted
	}
	if !s.answered[s.current] && s.opts.RequireAnswerToAdvance {
		return s.stateLocked(), domain.ErrAnswerRequired
	}

	if s.current == len(s.questions)-1 {
		s.completeLocked(len(s.questions))
	} else {
		s.current++
	}
	return s.stateLocked(), nil
}

// Previous steps back for review only. It never clears a recorded answer and
// never changes the score; at index 0 it is a no-op.
func (s *Session) Previous() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return s.stateLocked(), domain.ErrSessionCompleted
	}
	if s.current > 0 {
		s.current--
	}
	return s.stateLocked(), nil
}

// FinishEarly completes the session over the answered questions only, so the
// percentage reflects what was attempted rather than what was assigned. With
// nothing answered there is no result to derive; callers are expected to
// confirm with the user and abandon instead.
func (s *Session) FinishEarly() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return s.stateLocked(), domain.ErrSessionCompleted
	}
	total := s.answeredCountLocked()
	if total == 0 {
		return s.stateLocked(), domain.ErrNothingAnswered
	}
	s.completeLocked(total)
	return s.stateLocked(), nil
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Result returns the derived result once the session has completed.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

func (s *Session) completeLocked(total int) {
	s.completed = true
	s.result = &domain.QuizResult{
		CategoryID:     s.category,
		Score:          s.score,
		TotalQuestions: total,
		Percentage:     roundPercent(s.score, total),
		Date:           s.now(),
	}
}

func (s *Session) answeredCountLocked() int {
	count := 0
	for _, done := range s.answered {
		if done {
			count++
		}
	}
	return count
}

func (s *Session) stateLocked() State {
	state := State{
		Index:           s.current,
		Total:           len(s.questions),
		Score:           s.score,
		PercentComplete: roundPercent(s.current, len(s.questions)),
	}

	if s.completed {
		state.Phase = PhaseCompleted
		state.PercentComplete = 100
		if s.result != nil {
			result := *s.result
			state.Result = &result
		}
		return state
	}

	question := s.questions[s.current]
	state.Question = question.Text
	state.Options = question.Options
	state.MediaURL = question.MediaURL
	state.Answered = s.answered[s.current]
	if state.Answered {
		state.Phase = PhaseAwaitingAdvance
		state.SelectedOption = s.answers[s.current]
		state.Correct = s.correct[s.current]
		state.CorrectAnswer = question.Answer
		state.Explanation = question.Explanation
	} else {
		state.Phase = PhaseInProgress
	}
	return state
}

func roundPercent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
