package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/calchat/calchat/conversation"
)

// Config carries the gateway settings.
type Config struct {
	BaseURL       string
	SessionID     string
	ChatTimeout   time.Duration
	HealthTimeout time.Duration
}

// Client talks to the booking backend. Chat calls are total: every
// failure mode is folded into a Reply, so the conversation log always
// gains an assistant turn no matter what the network does.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient builds a client with a shared transport and a small rate
// limiter so rapid widget clicks cannot flood a cold backend.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = 35 * time.Second
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		limiter: rate.NewLimiter(2, 4),
		logger:  logger,
	}
}

type chatRequest struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// SendMessage posts one chat turn to the backend. The request timestamp
// is generated in IST regardless of host locale. Transport failures that
// match the cold-start signature become the synthetic startup reply; any
// other failure becomes a descriptive error reply.
func (c *Client) SendMessage(ctx context.Context, text string) conversation.Reply {
	reply, err := c.postChat(ctx, text)
	if err == nil {
		return reply
	}
	if IsColdStart(err) {
		c.logger.Info("chat call classified as cold start", zap.Error(err))
		return StartupReply()
	}
	c.logger.Warn("chat call failed", zap.Error(err))
	return errorReply(fmt.Sprintf("Connection error: %v. Please check if the backend is running.", err))
}

func (c *Client) postChat(ctx context.Context, text string) (conversation.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ChatTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return conversation.Reply{}, fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Role:      conversation.RoleUser,
		Content:   text,
		Timestamp: conversation.NowIST().Format(time.RFC3339),
	})
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("encode chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat?session_id=" + url.QueryEscape(c.cfg.SessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return conversation.Reply{}, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Backend-reported errors become part of the conversation rather
		// than transport failures.
		return errorReply(fmt.Sprintf("Error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))), nil
	}

	var reply conversation.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return conversation.Reply{}, fmt.Errorf("decode chat response: %w", err)
	}
	if reply.SuggestedTimes == nil {
		reply.SuggestedTimes = []string{}
	}
	return reply, nil
}

func errorReply(message string) conversation.Reply {
	return conversation.Reply{Message: message, SuggestedTimes: []string{}}
}

// HealthStatus is the result of the diagnostic probe. It never feeds
// conversation state.
type HealthStatus struct {
	Healthy        bool
	Err            string
	CalendarStatus string
	ServerTime     string
}

// CheckHealth queries the backend status endpoint for the diagnostics
// panel.
func (c *Client) CheckHealth(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return HealthStatus{Err: err.Error()}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HealthStatus{Err: fmt.Sprintf("status: %d", resp.StatusCode)}
	}
	var payload struct {
		CalendarStatus string `json:"calendar_status"`
		ServerTime     string `json:"server_time"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return HealthStatus{Err: fmt.Sprintf("decode health response: %v", err)}
	}
	return HealthStatus{
		Healthy:        true,
		CalendarStatus: payload.CalendarStatus,
		ServerTime:     payload.ServerTime,
	}
}
