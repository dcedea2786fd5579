package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	sendTimeout    = 10 * time.Second

	// ParseMode is the formatting mode used for every outgoing message.
	// Labels must be escaped with EscapeMarkdown before being embedded.
	ParseMode = "MarkdownV2"
)

// Identity describes the bot account behind the token, as reported by getMe.
type Identity struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username"`
}

// Telegram delivers alert messages to a single chat via the Bot API.
type Telegram struct {
	token   string
	chatID  string
	baseURL string // overridable for tests
	client  *http.Client
}

// New creates a Telegram channel for the given bot token and chat.
func New(token, chatID string) *Telegram {
	return &Telegram{
		token:   token,
		chatID:  chatID,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: sendTimeout},
	}
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Identity calls getMe. Used once at startup to verify the token before the
// monitor loop begins; a failure here is fatal.
func (t *Telegram) Identity(ctx context.Context) (Identity, error) {
	raw, err := t.call(ctx, "getMe", nil)
	if err != nil {
		return Identity{}, err
	}

	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return Identity{}, fmt.Errorf("telegram: decode getMe result: %w", err)
	}
	return id, nil
}

// Send delivers text to the configured chat using MarkdownV2 formatting.
// The caller is responsible for escaping reserved characters exactly once.
func (t *Telegram) Send(ctx context.Context, text string) error {
	body := map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": ParseMode,
	}
	_, err := t.call(ctx, "sendMessage", body)
	return err
}

// call POSTs one Bot API method and returns the raw result payload.
// Both transport failures and API-level errors (ok=false) are reported as
// errors; the API description is included when present.
func (t *Telegram) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("telegram: encode %s payload: %w", method, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("telegram: %s: decode response (HTTP %d): %w",
			method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		if apiResp.Description != "" {
			return nil, fmt.Errorf("telegram: %s: api error (HTTP %d): %s",
				method, resp.StatusCode, apiResp.Description)
		}
		return nil, fmt.Errorf("telegram: %s: api error (HTTP %d)", method, resp.StatusCode)
	}
	return apiResp.Result, nil
}
