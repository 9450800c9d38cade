package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/checkers"
	"github.com/benbeisheim/dama-backend/internal/config"
)

var ErrUnavailable = errors.New("advice unavailable")

const (
	// FallbackText is shown to players when the advice service cannot answer.
	FallbackText = "I'm having trouble analyzing the board right now. Focus on defense!"
	defaultTip   = "Watch your diagonals and focus on defense!"
)

type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	log      zerolog.Logger
}

func NewClient(cfg config.AdviceConfig, log zerolog.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		log:      log.With().Str("component", "advice").Logger(),
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Advice asks the text-generation endpoint for a short tip for side.
func (c *Client) Advice(ctx context.Context, b checkers.Board, side checkers.Side) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no api key configured", ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.endpoint)
	agent.Set("x-goog-api-key", c.apiKey)
	agent.JSON(generateRequest{Contents: []content{{
		Role:  "user",
		Parts: []part{{Text: Prompt(b, side)}},
	}}})
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.log.Warn().Err(errs[0]).Msg("advice request failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, errs[0])
	}
	if code != fiber.StatusOK {
		c.log.Warn().Int("status", code).Str("body", string(body)).Msg("advice upstream error")
		return "", fmt.Errorf("%w: upstream status %d", ErrUnavailable, code)
	}
	c.log.Debug().Dur("took", time.Since(start)).Msg("advice received")
	return parseText(body)
}

func parseText(body []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return defaultTip, nil
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return defaultTip, nil
	}
	return text, nil
}

// Prompt is the coaching request sent for side on board b.
func Prompt(b checkers.Board, side checkers.Side) string {
	name := side.DisplayName()
	var sb strings.Builder
	sb.WriteString("You are an expert Checkers (Dama) coach.\n")
	sb.WriteString("Analyze the following board state.\n\n")
	fmt.Fprintf(&sb, "Current Player: %s\n\n", name)
	sb.WriteString("Board Representation ([ ] is empty, [B] is Blue, [W] is White, [BK]/[WK] are Kings):\n")
	sb.WriteString(b.String())
	sb.WriteString("\nBoard Orientation:\n")
	sb.WriteString("- Row 0 is top. Row 7 is bottom.\n")
	sb.WriteString("- White starts at top (Rows 1-2) and moves DOWN (increasing row index).\n")
	sb.WriteString("- Blue starts at bottom (Rows 5-6) and moves UP (decreasing row index).\n")
	sb.WriteString("- Pieces move orthogonally; kings fly any distance.\n\n")
	sb.WriteString("Task:\n")
	fmt.Fprintf(&sb, "Provide a very brief, strategic tip (max 2 sentences) for the %s player.\n", name)
	sb.WriteString("Focus on controlling the center, protecting kings, or setting up a double jump if visible.\n")
	sb.WriteString("Do not describe the board back to me. Just give the advice.\n")
	return sb.String()
}
