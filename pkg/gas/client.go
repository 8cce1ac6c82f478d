package gas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tg-notes-bot/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ActionExists     = "exists"
	ActionUpsertNote = "upsert_note"
	ActionAddTrack   = "add_track"
)

// Record is one row of the user's spreadsheet
type Record struct {
	ID       string   `json:"id"`
	When     string   `json:"when"`
	What     string   `json:"what"`
	Emotions []string `json:"emotions"`
	Tags     []string `json:"tags"`
}

// TrackItem is one playlist entry: the link and the text it is shown with.
type TrackItem struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// Response covers every action. A transport failure is folded into OK=false with
// the error text, so callers only ever look at one shape.
type Response struct {
	OK     bool   `json:"ok"`
	Exists bool   `json:"exists,omitempty"`
	Added  int    `json:"added,omitempty"`
	Error  string `json:"error,omitempty"`
}

type request struct {
	Action string      `json:"action"`
	User   string      `json:"user"`
	ID     string      `json:"id,omitempty"`
	Record *Record     `json:"record,omitempty"`
	Items  []TrackItem `json:"items,omitempty"`
}

// Client talks to the Apps Script web app that fronts the spreadsheets
type Client struct {
	BaseURL      string
	DeploymentID string
	HTTPClient   *http.Client
	logger       logger.ILogger
}

func NewClient(baseURL, deploymentID string, timeout time.Duration, log logger.ILogger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		DeploymentID: deploymentID,
		HTTPClient:   &http.Client{Timeout: timeout},
		logger:       log,
	}
}

func (c *Client) url() string {
	return fmt.Sprintf("%s/%s/exec", c.BaseURL, c.DeploymentID)
}

// Exists reports whether a row with the given message id exists for the user.
// Any failure reads as "no".
func (c *Client) Exists(ctx context.Context, user string, msgID int) bool {
	resp := c.post(ctx, request{Action: ActionExists, User: user, ID: strconv.Itoa(msgID)})
	return resp.OK && resp.Exists
}

// UpsertNote creates or updates the note row keyed by the summary message id.
func (c *Client) UpsertNote(ctx context.Context, user string, record Record) Response {
	return c.post(ctx, request{Action: ActionUpsertNote, User: user, Record: &record})
}

// AddTracks appends playlist entries to the row. Items missing a link or a text are dropped.
func (c *Client) AddTracks(ctx context.Context, user string, msgID int, items []TrackItem) Response {
	clean := make([]TrackItem, 0, len(items))
	for _, it := range items {
		link := strings.TrimSpace(it.Link)
		text := strings.TrimSpace(it.Text)
		if link != "" && text != "" {
			clean = append(clean, TrackItem{Link: link, Text: text})
		}
	}
	return c.post(ctx, request{Action: ActionAddTrack, User: user, ID: strconv.Itoa(msgID), Items: clean})
}

func (c *Client) post(ctx context.Context, payload request) Response {
	ctx, span := otel.Tracer("gas").Start(ctx, "gas."+payload.Action)
	defer span.End()
	span.SetAttributes(attribute.String("gas.user", payload.User))

	resp, err := c.do(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("GAS", "GAS request failed", map[string]interface{}{
			"action": payload.Action,
			"user":   payload.User,
			"error":  err.Error(),
		})
		return Response{OK: false, Error: err.Error()}
	}
	if !resp.OK {
		c.logger.Warn("GAS", "GAS returned not ok", map[string]interface{}{
			"action": payload.Action,
			"user":   payload.User,
			"error":  resp.Error,
		})
	}
	return resp
}

func (c *Client) do(ctx context.Context, payload request) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Apps Script answers with a redirect to the result; the default client follows it.
	httpResp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to call GAS: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("GAS status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return Response{}, fmt.Errorf("bad response JSON: %w", err)
	}
	return resp, nil
}
