package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// GatewayClient implements Client against the HTTP API of a gateway
// sidecar, the process that holds the actual chat-platform session. The
// gateway resolves platform-specific details (permission overwrites,
// moderation roles, modlog channel routing) and serves the engine plain
// JSON snapshots.
type GatewayClient struct {
	Host      string
	AuthToken string
	BotID     string
	Client    *http.Client
}

func NewGatewayClient(host, authToken, botID string, logger *slog.Logger) *GatewayClient {
	return &GatewayClient{
		Host:      host,
		AuthToken: authToken,
		BotID:     botID,
		Client:    robustHTTPClient(logger),
	}
}

var _ Client = (*GatewayClient)(nil)

type leveledSlog struct {
	inner *slog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l leveledSlog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

// re-writes HTTP client DEBUG to INFO level (this is where retry is logged)
func (l leveledSlog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

// robustHTTPClient generates an HTTP client with decent general-purpose
// defaults around timeouts and retries. The returned client has the stdlib
// http.Client interface, but has Hashicorp retryablehttp logic internally:
// it retries on connection errors, 5xx status (except 501), and 429
// responses (respecting the 'Retry-After' header), which the gateway
// passes through from the upstream platform.
func robustHTTPClient(logger *slog.Logger) *http.Client {
	if logger == nil {
		logger = slog.Default()
	}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledSlog{logger})
	client := retryClient.StandardClient()
	client.Timeout = 20 * time.Second
	return client
}

func (g *GatewayClient) BotUserID() string {
	return g.BotID
}

func (g *GatewayClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := g.Host + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding gateway request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building gateway request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.AuthToken)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	case http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrPermissionDenied)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gateway returned HTTP %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding gateway response: %w", err)
	}
	return nil
}

func (g *GatewayClient) Community(ctx context.Context, communityID string) (*Community, error) {
	var out Community
	if err := g.do(ctx, http.MethodGet, "/v1/communities/"+communityID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GatewayClient) Communities(ctx context.Context) ([]Community, error) {
	var out struct {
		Communities []Community `json:"communities"`
	}
	if err := g.do(ctx, http.MethodGet, "/v1/communities", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Communities, nil
}

func (g *GatewayClient) Member(ctx context.Context, communityID, userID string) (*Member, error) {
	var out Member
	if err := g.do(ctx, http.MethodGet, "/v1/communities/"+communityID+"/members/"+userID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GatewayClient) ListMembers(ctx context.Context, communityID, cursor string, limit int) ([]Member, string, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Members []Member `json:"members"`
		Cursor  string   `json:"cursor"`
	}
	if err := g.do(ctx, http.MethodGet, "/v1/communities/"+communityID+"/members", q, nil, &out); err != nil {
		return nil, "", err
	}
	return out.Members, out.Cursor, nil
}

func (g *GatewayClient) MemberPermissions(ctx context.Context, communityID, userID string) (Permissions, error) {
	var out Permissions
	err := g.do(ctx, http.MethodGet, "/v1/communities/"+communityID+"/members/"+userID+"/permissions", nil, nil, &out)
	return out, err
}

func (g *GatewayClient) BotPermissions(ctx context.Context, communityID string) (Permissions, error) {
	var out Permissions
	err := g.do(ctx, http.MethodGet, "/v1/communities/"+communityID+"/permissions", nil, nil, &out)
	return out, err
}

func (g *GatewayClient) AddRole(ctx context.Context, communityID, userID, roleID string) error {
	return g.do(ctx, http.MethodPut,
		"/v1/communities/"+communityID+"/members/"+userID+"/roles/"+roleID, nil, nil, nil)
}

func (g *GatewayClient) Kick(ctx context.Context, communityID, userID, reason string) error {
	body := map[string]string{"reason": reason}
	return g.do(ctx, http.MethodPost,
		"/v1/communities/"+communityID+"/members/"+userID+"/kick", nil, body, nil)
}

func (g *GatewayClient) Ban(ctx context.Context, communityID, userID, reason string) error {
	body := map[string]string{"reason": reason}
	return g.do(ctx, http.MethodPost,
		"/v1/communities/"+communityID+"/members/"+userID+"/ban", nil, body, nil)
}

func (g *GatewayClient) SendDirectMessage(ctx context.Context, userID, content string) error {
	body := map[string]string{"content": content}
	return g.do(ctx, http.MethodPost, "/v1/users/"+userID+"/messages", nil, body, nil)
}

func (g *GatewayClient) PublishModlog(ctx context.Context, communityID, content, markerUserID string) (string, error) {
	body := map[string]string{"content": content, "markerUserId": markerUserID}
	var out struct {
		MessageID string `json:"messageId"`
	}
	if err := g.do(ctx, http.MethodPost, "/v1/communities/"+communityID+"/modlog", nil, body, &out); err != nil {
		return "", err
	}
	return out.MessageID, nil
}

func (g *GatewayClient) AddReaction(ctx context.Context, communityID, messageID, emoji string) error {
	body := map[string]string{"emoji": emoji}
	return g.do(ctx, http.MethodPost,
		"/v1/communities/"+communityID+"/messages/"+messageID+"/reactions", nil, body, nil)
}

func (g *GatewayClient) BanList(ctx context.Context, communityID string) ([]BanEntry, error) {
	var out struct {
		Bans []BanEntry `json:"bans"`
	}
	if err := g.do(ctx, http.MethodGet, "/v1/communities/"+communityID+"/bans", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Bans, nil
}
