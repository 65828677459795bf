package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caremeal/caremeal/app/internal/config"
	"github.com/caremeal/caremeal/app/internal/model/meal"
)

// ErrRejected is returned when the backend answers 2xx with status "error".
var ErrRejected = errors.New("request rejected by backend")

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// Client talks to the CareMeal backend. Every call is a single attempt.
type Client struct {
	baseURL        string
	http           *http.Client
	chatTimeout    time.Duration
	analyzeTimeout time.Duration
	requestTimeout time.Duration
	log            *logrus.Entry
}

// NewClient builds a backend client from configuration.
func NewClient(cfg config.APIConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		http:           httpClient,
		chatTimeout:    cfg.ChatTimeout,
		analyzeTimeout: cfg.AnalyzeTimeout,
		requestTimeout: cfg.RequestTimeout,
		log:            logrus.WithField("component", "api"),
	}
}

// Chat sends a message to the doctor and returns the reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var resp ChatResponse
	if err := c.postJSON(ctx, c.chatTimeout, "/chat", req, &resp); err != nil {
		return ChatResponse{}, err
	}
	return resp, nil
}

// SignUp registers a new account with its survey result.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (StatusResponse, error) {
	var resp StatusResponse
	if err := c.postJSON(ctx, c.requestTimeout, "/signup", req, &resp); err != nil {
		return StatusResponse{}, err
	}
	if resp.Status == "error" {
		return resp, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	return resp, nil
}

// Login checks credentials. A rejected login is not an error; inspect Status.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.postJSON(ctx, c.requestTimeout, "/login", req, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

// AnalyzeFood uploads a meal photo for nutrition analysis.
func (c *Client) AnalyzeFood(ctx context.Context, userID, filename string, image io.Reader) (ChatResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return ChatResponse{}, fmt.Errorf("failed to copy image: %w", err)
	}
	if err := writer.WriteField("user_id", userID); err != nil {
		return ChatResponse{}, fmt.Errorf("failed to write user_id: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ChatResponse{}, fmt.Errorf("failed to finalize form: %w", err)
	}

	ctx, cancel := withTimeout(ctx, c.analyzeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-food", &body)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var raw analyzeFoodResponse
	if err := c.do(req, &raw); err != nil {
		return ChatResponse{}, err
	}

	return ChatResponse{
		Reply:   raw.Reply,
		Sources: []string{ImageAnalysisSource},
	}, nil
}

// FetchMealPlan reads the server copy of a day's meal plan; nil means none.
func (c *Client) FetchMealPlan(ctx context.Context, userID, date string) (*meal.DailyPlan, error) {
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("user_id", userID)
	query.Set("date", date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/meals?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp struct {
		Status string          `json:"status"`
		Data   *meal.DailyPlan `json:"data"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return nil, ErrRejected
	}
	return resp.Data, nil
}

// PushMealPlan stores a day's meal plan on the server.
func (c *Client) PushMealPlan(ctx context.Context, userID, date string, plan meal.DailyPlan) error {
	body := struct {
		UserID string         `json:"user_id"`
		Date   string         `json:"date"`
		Plan   meal.DailyPlan `json:"plan"`
	}{userID, date, plan}

	var resp StatusResponse
	if err := c.sendJSON(ctx, c.requestTimeout, http.MethodPut, "/meals", body, &resp); err != nil {
		return err
	}
	if resp.Status == "error" {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Message)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, timeout time.Duration, path string, payload, out any) error {
	return c.sendJSON(ctx, timeout, http.MethodPost, path, payload, out)
}

func (c *Client) sendJSON(ctx context.Context, timeout time.Duration, method, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"method":  req.Method,
		"path":    req.URL.Path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
