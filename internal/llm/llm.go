// Package llm defines the provider-neutral chat contract used by the advisor.
package llm

import (
	"context"
	"errors"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

var (
	// ErrRateLimited means the provider refused the call for rate or quota reasons; retrying later may succeed.
	ErrRateLimited = errors.New("llm rate limited")
	// ErrInvalidAPIKey means the provider rejected the configured key.
	ErrInvalidAPIKey = errors.New("llm api key not valid")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("llm empty response")
)

// Turn is one message of a conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is a single exchange: prior turns plus the new user prompt.
type ChatRequest struct {
	System  string
	History []Turn
	Prompt  string
}

// ChatClient abstracts chat providers.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
