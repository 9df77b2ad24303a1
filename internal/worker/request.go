package worker

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobmate/apply-service/internal/model"
)

// QueueStartRun is the Redis list run requests are pushed on.
const QueueStartRun = "CMD_START_APPLY_RUN"

// RunRequest is the queued command. Credentials travel in the payload and are
// never echoed back in events.
type RunRequest struct {
	RequestID string `json:"requestId"`
	model.RunConfig
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ParseRequest decodes a queue payload.
func ParseRequest(payload string) (RunRequest, error) {
	var req RunRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return RunRequest{}, fmt.Errorf("decode run request: %w", err)
	}
	if strings.TrimSpace(req.RequestID) == "" {
		return RunRequest{}, fmt.Errorf("decode run request: requestId is required")
	}
	return req, nil
}

// Config returns the RunConfig carried by the request.
func (r RunRequest) Config() model.RunConfig {
	cfg := r.RunConfig
	cfg.Credentials = model.Credentials{Email: r.Email, Password: r.Password}
	return cfg
}
