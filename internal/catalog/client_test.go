package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"physquiz-service/internal/domain"
)

const questionsFixture = `[
	{
		"id": 101,
		"question": "Which ion drives the resting membrane potential?",
		"option_1": "Potassium",
		"option_2": "Sodium",
		"option_3": "Calcium",
		"option_4": "Chloride",
		"answer": " potassium ",
		"explanation": "K+ permeability dominates at rest.",
		"category_id": 44,
		"urlCode": "https://example.org/membrane.png"
	},
	{
		"id": 102,
		"question": "Blank options get dropped",
		"option_1": "Only",
		"option_2": "Two",
		"option_3": "",
		"option_4": "",
		"answer": "Two",
		"explanation": "",
		"category_id": 44
	},
	{
		"id": 103,
		"question": "Positional answers are unsupported",
		"option_1": "A",
		"option_2": "B",
		"option_3": "C",
		"option_4": "D",
		"answer": "2",
		"explanation": "",
		"category_id": 44
	}
]`

func TestQuestionsMapsWireRecords(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("category_id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(questionsFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	questions, err := client.Questions(context.Background(), "44")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if gotPath != "/physquiz" || gotQuery != "44" {
		t.Fatalf("unexpected request %s?category_id=%s", gotPath, gotQuery)
	}

	// The positional-answer record must be dropped.
	if len(questions) != 2 {
		t.Fatalf("expected 2 usable questions, got %d", len(questions))
	}

	first := questions[0]
	if first.ID != "101" || first.CategoryID != "44" {
		t.Fatalf("id mapping broken: %+v", first)
	}
	if len(first.Options) != 4 || first.Options[0] != "Potassium" {
		t.Fatalf("option mapping broken: %+v", first.Options)
	}
	if first.MediaURL != "https://example.org/membrane.png" {
		t.Fatalf("media mapping broken: %+v", first)
	}
	if domain.Normalize(first.Answer) != "potassium" {
		t.Fatalf("answer mapping broken: %q", first.Answer)
	}

	second := questions[1]
	if len(second.Options) != 2 {
		t.Fatalf("blank options must be dropped, got %+v", second.Options)
	}
}

func TestQuestionsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	if _, err := client.Questions(context.Background(), "44"); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestQuestionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	if _, err := client.Questions(context.Background(), "44"); err == nil {
		t.Fatalf("expected error on 500 response")
	}
}

func TestCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"id":44,"name":"Core Concepts","description":"Basics"},{"id":46,"name":"Nervous System"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].ID != "44" || categories[0].Name != "Core Concepts" {
		t.Fatalf("category mapping broken: %+v", categories[0])
	}
}

func TestUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/User/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"name":"Alice","email":"alice@example.org"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	profile, err := client.User(context.Background())
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if profile.Name != "Alice" || profile.Email != "alice@example.org" {
		t.Fatalf("profile mapping broken: %+v", profile)
	}
}
