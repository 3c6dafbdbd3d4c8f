// Package catalog is the client for the remote physiology question API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"physquiz-service/internal/domain"
)

// DefaultBaseURL is the production question API.
const DefaultBaseURL = "https://placements.bsms.ac.uk/api"

// Client fetches categories, questions and the user record over HTTPS.
// Concurrent question fetches for the same category are coalesced; nothing is
// cached between calls and nothing is retried.
type Client struct {
	baseURL string
	http    *http.Client
	sf      singleflight.Group
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type categoryRecord struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
}

// questionRecord is the wire shape of a question: four fixed option fields
// with the answer as free text.
type questionRecord struct {
	ID          json.Number `json:"id"`
	Question    string      `json:"question"`
	Option1     string      `json:"option_1"`
	Option2     string      `json:"option_2"`
	Option3     string      `json:"option_3"`
	Option4     string      `json:"option_4"`
	Answer      string      `json:"answer"`
	Explanation string      `json:"explanation"`
	CategoryID  json.Number `json:"category_id"`
	URLCode     string      `json:"urlCode"`
}

// Categories lists all quiz categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var records []categoryRecord
	if err := c.getJSON(ctx, "/categories", nil, &records); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	categories := make([]domain.Category, 0, len(records))
	for _, record := range records {
		categories = append(categories, domain.Category{
			ID:          record.ID.String(),
			Name:        record.Name,
			Description: record.Description,
		})
	}
	return categories, nil
}

// Category fetches a single category by ID.
func (c *Client) Category(ctx context.Context, id string) (domain.Category, error) {
	var record categoryRecord
	err := c.getJSON(ctx, "/categories/"+url.PathEscape(id), nil, &record)
	if err != nil {
		return domain.Category{}, fmt.Errorf("fetch category %s: %w", id, err)
	}
	if record.Name == "" {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return domain.Category{
		ID:          record.ID.String(),
		Name:        record.Name,
		Description: record.Description,
	}, nil
}

// Questions fetches all usable questions for a category. Records with blank
// prompts or whose answer matches no option are dropped; an entirely unusable
// response is ErrNoQuestions.
func (c *Client) Questions(ctx context.Context, categoryID string) ([]domain.Question, error) {
	result, err, _ := c.sf.Do("questions:"+categoryID, func() (interface{}, error) {
		return c.fetchQuestions(ctx, categoryID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *Client) fetchQuestions(ctx context.Context, categoryID string) ([]domain.Question, error) {
	query := url.Values{}
	if categoryID != "" {
		query.Set("category_id", categoryID)
	}
	var records []questionRecord
	if err := c.getJSON(ctx, "/physquiz", query, &records); err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	questions := make([]domain.Question, 0, len(records))
	for _, record := range records {
		question, ok := record.toDomain()
		if !ok {
			log.Printf("skipping malformed question %s", record.ID.String())
			continue
		}
		questions = append(questions, question)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

// User fetches the remote profile record.
func (c *Client) User(ctx context.Context) (domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := c.getJSON(ctx, "/User/", nil, &profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("fetch user: %w", err)
	}
	return profile, nil
}

func (record questionRecord) toDomain() (domain.Question, bool) {
	if strings.TrimSpace(record.Question) == "" || domain.Normalize(record.Answer) == "" {
		return domain.Question{}, false
	}

	options := make([]string, 0, 4)
	for _, opt := range []string{record.Option1, record.Option2, record.Option3, record.Option4} {
		if strings.TrimSpace(opt) != "" {
			options = append(options, opt)
		}
	}

	// The answer must resolve to an option by normalized text. Records using
	// legacy positional answers ("1".."4") fail this check and are dropped;
	// they need migration on the API side.
	matched := false
	for _, opt := range options {
		if domain.Normalize(opt) == domain.Normalize(record.Answer) {
			matched = true
			break
		}
	}
	if !matched {
		return domain.Question{}, false
	}

	return domain.Question{
		ID:          record.ID.String(),
		Text:        record.Question,
		Options:     options,
		Answer:      record.Answer,
		Explanation: record.Explanation,
		CategoryID:  record.CategoryID.String(),
		MediaURL:    record.URLCode,
	}, true
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
