// Package slack is a thin gateway over the Slack Web API methods the relay
// needs: auth.test, conversations.history, users.info and chat.postMessage.
// Failures map onto the shared typed error codes so callers can tell
// transport problems from upstream rejections.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/claytonbrgsdev/slack-translator-app/internal/config"
	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	userToken  string
}

func NewClient(cfg config.SlackConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.SlackAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		botToken:   cfg.BotToken,
		userToken:  cfg.UserToken,
	}
}

// AuthTest resolves the identity the bot token authenticates as.
func (c *Client) AuthTest(ctx context.Context) (*AuthIdentity, error) {
	var resp authTestResponse
	if err := c.call(ctx, "auth.test", nil, c.botToken, &resp); err != nil {
		return nil, err
	}

	if resp.UserID == "" {
		return nil, apperrors.ErrMalformedResponse.WithDetail("message", "auth.test response missing user_id")
	}

	return &AuthIdentity{
		UserID: resp.UserID,
		User:   resp.User,
		Team:   resp.Team,
	}, nil
}

// FetchHistory returns channel messages strictly newer than oldest, capped at
// limit. Order is whatever the API returns; callers must re-sort.
func (c *Client) FetchHistory(ctx context.Context, channelID string, oldest float64, limit int) ([]Message, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("oldest", strconv.FormatFloat(oldest, 'f', 6, 64))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("inclusive", "false")

	var resp historyResponse
	if err := c.call(ctx, "conversations.history", params, c.botToken, &resp); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ts, err := strconv.ParseFloat(m.TS, 64)
		if err != nil {
			return nil, apperrors.ErrMalformedResponse.
				WithCause(err).
				WithDetail("message", fmt.Sprintf("unparseable message ts %q", m.TS))
		}
		messages = append(messages, Message{
			ID:        m.TS,
			Timestamp: ts,
			Text:      m.Text,
			AuthorID:  m.User,
			Automated: m.Subtype == "bot_message" || m.BotID != "",
		})
	}

	return messages, nil
}

// GetUserProfile looks up a user's display fields. An unknown user id maps to
// a NOT_FOUND error.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	params := url.Values{}
	params.Set("user", userID)

	var resp userInfoResponse
	if err := c.call(ctx, "users.info", params, c.botToken, &resp); err != nil {
		return nil, err
	}

	return &UserProfile{
		RealName:    resp.User.RealName,
		DisplayName: resp.User.Profile.DisplayName,
		LoginName:   resp.User.Name,
		AvatarVariants: []string{
			resp.User.Profile.Image512,
			resp.User.Profile.Image192,
			resp.User.Profile.Image72,
			resp.User.Profile.Image48,
		},
	}, nil
}

// PostMessage posts text to the channel. The user token is preferred when
// configured so the message appears as the authenticated user rather than
// the bot.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) (*PostResult, error) {
	token := c.botToken
	if c.userToken != "" {
		token = c.userToken
	}

	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("text", text)

	var resp postMessageResponse
	if err := c.call(ctx, "chat.postMessage", params, token, &resp); err != nil {
		return nil, err
	}

	return &PostResult{ID: resp.TS}, nil
}

// call performs one Web API request and decodes the ok/error envelope.
func (c *Client) call(ctx context.Context, method string, params url.Values, token string, out interface{}) error {
	endpoint := c.baseURL + "/" + method

	var req *http.Request
	var err error
	if params == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return apperrors.ErrTransport.WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return apperrors.ErrUpstream.WithDetail("status", resp.StatusCode).WithDetail("method", method)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.ErrMalformedResponse.WithCause(err).WithDetail("method", method)
	}

	env := extractEnvelope(out)
	if env != nil && !env.OK {
		if env.Error == "user_not_found" || env.Error == "channel_not_found" {
			return apperrors.ErrNotFound.
				WithDetail("method", method).
				WithDetail("slack_error", env.Error)
		}
		return apperrors.ErrUpstream.
			WithDetail("method", method).
			WithDetail("slack_error", env.Error)
	}

	return nil
}

func extractEnvelope(out interface{}) *envelope {
	switch v := out.(type) {
	case *authTestResponse:
		return &v.envelope
	case *historyResponse:
		return &v.envelope
	case *userInfoResponse:
		return &v.envelope
	case *postMessageResponse:
		return &v.envelope
	}
	return nil
}
