package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrUnavailable = errors.New("platform API unavailable")

// CommandDefinition is a slash-command registration payload.
type CommandDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []CommandOption `json:"options,omitempty"`
}

type CommandOption struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        int    `json:"type"`
	Required    bool   `json:"required"`
}

const OptionTypeString = 3

// Client is the REST side of the platform boundary.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

// SendMessage posts a new message and returns its platform identifier.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("/channels/%s/messages", channelID),
		map[string]string{"content": content}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// EditMessage replaces the content of an existing message in place.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	return c.do(ctx, http.MethodPatch,
		fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID),
		map[string]string{"content": content}, nil)
}

// React attaches one of the bot's own reactions to a message.
func (c *Client) React(ctx context.Context, channelID, messageID, emote string) error {
	return c.do(ctx, http.MethodPut,
		fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/@me",
			channelID, messageID, url.PathEscape(emote)), nil, nil)
}

// DeleteReaction removes a user's reaction from a message.
func (c *Client) DeleteReaction(ctx context.Context, channelID, messageID, userID, emote string) error {
	return c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/%s",
			channelID, messageID, url.PathEscape(emote), userID), nil, nil)
}

// RespondToInteraction replies to a slash command and returns the identifier
// of the reply message.
func (c *Client) RespondToInteraction(ctx context.Context, interactionID, content string) (string, error) {
	var resp struct {
		MessageID string `json:"message_id"`
	}
	err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("/interactions/%s/response", interactionID),
		map[string]string{"content": content}, &resp)
	if err != nil {
		return "", err
	}
	return resp.MessageID, nil
}

// RegisterCommands replaces the application's global slash commands.
func (c *Client) RegisterCommands(ctx context.Context, applicationID string, defs []CommandDefinition) error {
	return c.do(ctx, http.MethodPut,
		fmt.Sprintf("/applications/%s/commands", applicationID), defs, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrUnavailable, method, path, resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
