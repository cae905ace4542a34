package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

const conflictCheckPath = "/schedules/conflict-check"

// ConflictClient calls the conflict-check endpoint of a running API.
type ConflictClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewConflictClient targets baseURL, which includes the API prefix (e.g. http://localhost:8080/api/v1).
func NewConflictClient(baseURL, token string, httpClient *http.Client) *ConflictClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ConflictClient{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

type envelope struct {
	Data  *dto.ConflictCheckResponse `json:"data"`
	Error *appErrors.Error           `json:"error"`
}

// CheckConflict posts the draft. Transport failures and 5xx answers come back as
// SERVICE_UNAVAILABLE errors; 4xx answers keep the server's code and status.
func (c *ConflictClient) CheckConflict(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode conflict check: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+conflictCheckPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build conflict check request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransient.Code, appErrors.ErrTransient.Status, "conflict check unreachable")
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransient.Code, appErrors.ErrTransient.Status, fmt.Sprintf("unreadable conflict check response (HTTP %d)", resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		message := http.StatusText(resp.StatusCode)
		if env.Error != nil {
			message = env.Error.Message
		}
		return nil, appErrors.Clone(appErrors.ErrTransient, message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != nil {
			env.Error.Status = resp.StatusCode
			return nil, env.Error
		}
		return nil, appErrors.New("HTTP_ERROR", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if env.Data == nil {
		return nil, appErrors.Clone(appErrors.ErrTransient, "conflict check returned no data")
	}
	return env.Data, nil
}
