package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// TriviaClient fetches multiple-choice questions from an Open Trivia DB
// compatible endpoint. BaseURL and HTTP are plain fields so tests can point
// the client at a local stub server.
type TriviaClient struct {
	BaseURL string
	HTTP    *http.Client
}

func newTriviaClient(baseURL string) *TriviaClient {
	return &TriviaClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchQuestions requests cfg.QuestionCount questions matching the config
// filters. Category and difficulty are included in the request only when set.
// Only response_code 0 counts as success; any other upstream code is
// ErrNoQuestions even though the transport succeeded.
func (tc *TriviaClient) FetchQuestions(ctx context.Context, cfg QuizConfig) ([]Question, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(cfg.QuestionCount))
	params.Set("type", "multiple")
	if cfg.Category != "" {
		params.Set("category", cfg.Category)
	}
	if cfg.Difficulty != "" {
		params.Set("difficulty", cfg.Difficulty)
	}

	reqURL := tc.BaseURL + "/api.php?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTriviaUnavailable, err)
	}

	resp, err := tc.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTriviaUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logWarn("Trivia API returned HTTP %d for %s", resp.StatusCode, reqURL)
		return nil, fmt.Errorf("%w: HTTP %d", ErrTriviaUnavailable, resp.StatusCode)
	}

	var payload triviaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logWarn("Failed to decode trivia API payload: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTriviaUnavailable, err)
	}

	if payload.ResponseCode != triviaCodeSuccess || len(payload.Results) == 0 {
		logInfo("Trivia API has no results (response_code=%d, results=%d)", payload.ResponseCode, len(payload.Results))
		return nil, ErrNoQuestions
	}

	questions := lo.Map(payload.Results, func(r triviaResult, _ int) Question {
		return decodeQuestion(r)
	})
	logInfo("Fetched %d questions from trivia API", len(questions))
	return questions, nil
}

// decodeQuestion turns a raw API record into a Question. The API serves text
// with HTML entities escaped ("&amp;", "&quot;", "&#039;", numeric escapes);
// every text field is decoded to plain text here, once, so the rest of the
// app never sees an entity.
func decodeQuestion(r triviaResult) Question {
	return Question{
		Text:          html.UnescapeString(r.Question),
		Category:      html.UnescapeString(r.Category),
		Difficulty:    r.Difficulty,
		CorrectAnswer: html.UnescapeString(r.CorrectAnswer),
		Distractors: lo.Map(r.IncorrectAnswers, func(s string, _ int) string {
			return html.UnescapeString(s)
		}),
	}
}

// triviaCategories backs the category picker on the config screen. IDs are
// Open Trivia DB category identifiers, passed through as opaque strings.
var triviaCategories = []TriviaCategory{
	{ID: "", Name: "Any Category"},
	{ID: "9", Name: "General Knowledge"},
	{ID: "11", Name: "Film"},
	{ID: "12", Name: "Music"},
	{ID: "17", Name: "Science & Nature"},
	{ID: "18", Name: "Computers"},
	{ID: "21", Name: "Sports"},
	{ID: "22", Name: "Geography"},
	{ID: "23", Name: "History"},
}
