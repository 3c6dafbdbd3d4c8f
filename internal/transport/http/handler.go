// Package http exposes the study service over a REST API and a websocket
// session driver.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"physquiz-service/internal/app"
	"physquiz-service/internal/domain"
)

// Handler serves the REST API.
type Handler struct {
	service *app.StudyService
}

// NewRouter wires every route of the service, REST and websocket.
func NewRouter(service *app.StudyService) http.Handler {
	h := &Handler{service: service}
	ws := NewWSHandler(service)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.listCategories)
		r.Get("/categories/{id}", h.getCategory)
		r.Get("/categories/{id}/flashcards", h.listFlashcards)

		r.Post("/sessions", h.startSession)
		r.Get("/sessions/{id}", h.getSession)
		r.Post("/sessions/{id}/answer", h.selectOption)
		r.Post("/sessions/{id}/advance", h.advance)
		r.Post("/sessions/{id}/previous", h.previous)
		r.Post("/sessions/{id}/finish", h.finishEarly)
		r.Post("/sessions/{id}/abandon", h.abandon)

		r.Get("/stats/overall", h.overallStats)
		r.Get("/stats/categories", h.categoryStats)
		r.Get("/results/recent", h.recentResults)

		r.Get("/profile", h.getProfile)
		r.Put("/profile", h.putProfile)
		r.Get("/preferences", h.getPreferences)
		r.Put("/preferences", h.putPreferences)
	})

	r.Get("/ws/quiz", ws.ServeWS)
	return r
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.Category(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) listFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.Flashcards(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

type startSessionRequest struct {
	CategoryID  string   `json:"categoryId"`
	QuestionIDs []string `json:"questionIds,omitempty"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CategoryID == "" {
		writeMessage(w, http.StatusBadRequest, "categoryId is required")
		return
	}
	state, err := h.service.StartSession(r.Context(), req.CategoryID, req.QuestionIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type answerRequest struct {
	Option string `json:"option"`
}

func (h *Handler) selectOption(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := h.service.SelectOption(r.Context(), chi.URLParam(r, "id"), req.Option)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) previous(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Previous(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) finishEarly(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.FinishEarly(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Abandon(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) overallStats(w http.ResponseWriter, r *http.Request) {
	overall, err := h.service.OverallStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overall)
}

func (h *Handler) categoryStats(w http.ResponseWriter, r *http.Request) {
	byCategory, err := h.service.CategoryStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, byCategory)
}

func (h *Handler) recentResults(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeMessage(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = parsed
	}
	results, err := h.service.RecentResults(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) putProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.SaveProfile(r.Context(), profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.Preferences(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) putPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs domain.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.SavePreferences(r.Context(), prefs); err != nil {
		writeError(w, err)
		return
	}
	prefs, err := h.service.Preferences(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}

func writeError(w http.ResponseWriter, err error) {
	writeMessage(w, statusFor(err), err.Error())
}

// statusFor maps domain errors to HTTP statuses. Anything unknown is treated
// as an upstream fetch failure: the client shows an alert and navigates back.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrNoQuestions):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrAnswerRequired),
		errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrNothingAnswered),
		errors.Is(err, domain.ErrMalformedQuestion):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
