// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate provides machine translation of site copy and the
// course-recommendation chat assistant, both backed by the OpenAI API.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultTimeout = 120 * time.Second

// ErrNotConfigured is returned by New when no API key is set.
var ErrNotConfigured = errors.New("translate: no API key configured")

// Config holds the OpenAI connection settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// completer abstracts the chat completion call so tests can stub it.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Client talks to the OpenAI chat completions API.
type Client struct {
	api completer
}

// New builds a Client from cfg. It returns ErrNotConfigured when the
// API key is empty so callers can run without a translator.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api: &openAIAPI{client: openai.NewClient(opts...), model: cfg.Model},
	}, nil
}

// openAIAPI is the production completer backed by the official SDK.
type openAIAPI struct {
	client openai.Client
	model  string
}

func (a *openAIAPI) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// stripCodeFence removes a Markdown code fence that models sometimes
// wrap JSON replies in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
