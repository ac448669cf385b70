package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"mindwell-backend/internal/llm"
	"mindwell-backend/internal/shared/metrics"
	"mindwell-backend/internal/shared/telemetry"
)

const SystemInstruction = "You are a friendly and knowledgeable AI mental health advisor focused ONLY on student stress and well-being. " +
	"You must provide practical advice, tips, and suggestions related to common areas of student stress like anxiety, self-esteem, depression, sleep, academic performance, social pressure, and future concerns. " +
	"Your job is to help students cope with these stress factors through relaxation techniques, study planning, mental health tips, motivation, and encouragement. " +
	"Keep your responses concise, empathetic, and easy to understand. " +
	"If the user asks something unrelated to student stress or mental well-being, kindly and firmly respond with: " +
	"'I apologize, but my purpose is to assist with student stress and mental well-being. How can I help you with that today?'"

// Fallback replies.
const (
	ReplyRateLimited   = "I'm sorry, I'm still hitting limits. Please try again later."
	ReplyInvalidAPIKey = "There seems to be an issue with the API key. Please verify it is correct."
	ReplyFailed        = "I'm sorry, I encountered an issue while trying to respond."
	ReplyNotConfigured = "(chatbot not configured)"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 12 * time.Second
	MaxMessageLength  = 4000
)

var ErrInvalidInput = errors.New("invalid input")

// Config tunes retries and history size.
type Config struct {
	MaxRetries   int
	RetryDelay   time.Duration
	HistoryTurns int
}

// Reply is the outcome of one chat message.
type Reply struct {
	Text     string     `json:"reply"`
	Degraded bool       `json:"degraded"`
	History  []llm.Turn `json:"history"`
}

type Service struct {
	client      llm.ChatClient
	store       *Store
	breaker     *gobreaker.CircuitBreaker[string]
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewService builds the advisor. A nil client yields the not-configured reply.
func NewService(client llm.ChatClient, cfg Config) *Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Service{
		client:      client,
		store:       NewStore(cfg.HistoryTurns),
		breaker:     newBreaker("chat-upstream"),
		maxAttempts: cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		sleep:       sleepContext,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Quota and key problems are answered by the provider; they say nothing about its health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, llm.ErrRateLimited) ||
				errors.Is(err, llm.ErrInvalidAPIKey) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("advisor.breaker", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
}

func (s *Service) Configured() bool { return s.client != nil }

// Store exposes the per-user history store.
func (s *Service) Store() *Store { return s.store }

// History returns the stored conversation for the user.
func (s *Service) History(userID string) []llm.Turn {
	return s.store.Conversation(userID).Turns()
}

// ClearHistory forgets the user's conversation.
func (s *Service) ClearHistory(userID string) {
	s.store.Clear(userID)
}

// Reply answers message for the user. A non-nil override replaces the stored history.
// Upstream failures become degraded replies; only input and context errors are returned.
func (s *Service) Reply(ctx context.Context, userID, message string, override []llm.Turn) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len([]rune(message)) > MaxMessageLength {
		return Reply{}, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, MaxMessageLength)
	}

	var conv *Conversation
	if override != nil {
		conv = NewConversation(s.store.Limit(), override)
	} else {
		conv = s.store.Conversation(userID)
	}

	if s.client == nil {
		metrics.IncChat("disabled")
		return Reply{Text: ReplyNotConfigured, Degraded: true, History: conv.Turns()}, nil
	}

	req := llm.ChatRequest{System: SystemInstruction, History: conv.Turns(), Prompt: message}
	text, err := s.call(ctx, userID, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.IncChat("cancelled")
			return Reply{}, ctxErr
		}
		outcome, fallback := classify(err)
		metrics.IncChat(outcome)
		telemetry.Warn("advisor.failed", map[string]any{
			"user_id": userID,
			"outcome": outcome,
			"error":   err.Error(),
		})
		return Reply{Text: fallback, Degraded: true, History: conv.Turns()}, nil
	}

	var history []llm.Turn
	if override != nil {
		conv.Append(message, text)
		s.store.Save(userID, conv)
		history = conv.Turns()
	} else {
		history = s.store.Append(userID, message, text)
	}
	metrics.IncChat("ok")
	return Reply{Text: text, History: history}, nil
}

func (s *Service) call(ctx context.Context, userID string, req llm.ChatRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		text, err := s.breaker.Execute(func() (string, error) {
			return s.client.Chat(ctx, req)
		})
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !errors.Is(err, llm.ErrRateLimited) || attempt == s.maxAttempts {
			break
		}
		metrics.IncChatRetry()
		telemetry.Info("advisor.retry", map[string]any{
			"user_id":  userID,
			"attempt":  attempt,
			"delay_ms": s.retryDelay.Milliseconds(),
		})
		if err := s.sleep(ctx, s.retryDelay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func classify(err error) (outcome, reply string) {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return "rate_limited", ReplyRateLimited
	case errors.Is(err, llm.ErrInvalidAPIKey):
		return "invalid_key", ReplyInvalidAPIKey
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open", ReplyFailed
	default:
		return "error", ReplyFailed
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
