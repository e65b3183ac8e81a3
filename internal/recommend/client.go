// Package recommend is the best-effort client for the recommendation
// training endpoint. Notifications are fire-and-forget from the caller's
// point of view: failures are returned for logging but must never affect the
// primary engagement write.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type feedbackPayload struct {
	UserID    string `json:"user_id"`
	RecipeID  string `json:"recipe_id"`
	EventType string `json:"event_type"`
}

// NotifyFeedback posts one engagement fact for ML training. The eventType is
// the client-facing kind ("dislike", not the stored "hide"): the trainer
// wants the raw signal. A client with no configured URL is a no-op.
func (c *Client) NotifyFeedback(ctx context.Context, userID, recipeID, eventType string) error {
	if c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(feedbackPayload{
		UserID:    userID,
		RecipeID:  recipeID,
		EventType: eventType,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/feedback", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("feedback endpoint returned %d", resp.StatusCode)
	}
	return nil
}
