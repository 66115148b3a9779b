// Package client is the Go client for the taskflow API. It carries the
// task board state used by UIs: an injected TaskStore that applies status
// moves optimistically and rolls back when the server rejects them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusReview     = "REVIEW"
	StatusDone       = "DONE"
)

func validStatus(status string) bool {
	switch status {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

type UserSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type Task struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	ProjectID   uint         `json:"project_id"`
	AssigneeID  *uint        `json:"assignee_id"`
	ReporterID  uint         `json:"reporter_id"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Assignee    *UserSummary `json:"assignee,omitempty"`
	Reporter    *UserSummary `json:"reporter,omitempty"`
}

// APIError carries the server's status code and stable error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)

		message := errBody.Error
		if message == "" {
			message = resp.Status
		}

		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// ProjectTasks fetches a project's tasks, newest first.
func (c *Client) ProjectTasks(ctx context.Context, projectID uint) ([]Task, error) {
	var tasks []Task

	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d/tasks", projectID), nil, &tasks)

	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// UpdateTaskStatus hits the drag-and-drop PATCH endpoint.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID uint, status string) (*Task, error) {
	var task Task

	body := map[string]string{"status": status}

	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", taskID), body, &task)

	if err != nil {
		return nil, err
	}

	return &task, nil
}

// DeleteTask removes a task on the server.
func (c *Client) DeleteTask(ctx context.Context, taskID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", taskID), nil, nil)
}
