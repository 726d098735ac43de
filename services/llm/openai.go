// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel handles the structured discovery calls.
	DefaultModel = "gpt-4o"

	// DefaultAlternateModel is the stronger model preferred for code
	// emission. Not every account has access to it, so Generate falls
	// back to DefaultModel when it errors.
	DefaultAlternateModel = "o1-preview"
)

// Config configures an OpenAIOracle. The zero value is usable when
// OPENAI_API_KEY is set in the environment.
type Config struct {
	// Model for function-calling discovery calls. Default: DefaultModel.
	Model string

	// AlternateModel is tried first by Generate. Default:
	// DefaultAlternateModel.
	AlternateModel string

	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string

	// BaseURL overrides the API endpoint. Falls back to the
	// OPENAI_BASE_URL environment variable, then the public endpoint.
	// Tests point this at a local httptest server.
	BaseURL string
}

// OpenAIOracle implements Oracle on the OpenAI chat-completions API.
//
// Thread Safety:
//
//	Safe for concurrent use. All state is set at construction; the
//	underlying client is stateless per call.
type OpenAIOracle struct {
	client    *openai.Client
	model     string
	alternate string
	log       *slog.Logger
}

// Ensure OpenAIOracle implements Oracle
var _ Oracle = (*OpenAIOracle)(nil)

// NewOpenAIOracle builds an oracle from cfg, filling gaps from the
// environment.
//
// Inputs:
//
//	cfg - Models, key, and endpoint; zero fields use defaults.
//	log - Destination for call diagnostics; nil uses slog.Default().
//
// Outputs:
//
//	*OpenAIOracle - The configured oracle.
//	error - ErrMissingAPIKey when no key is available anywhere.
func NewOpenAIOracle(cfg Config, log *slog.Logger) (*OpenAIOracle, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	alternate := cfg.AlternateModel
	if alternate == "" {
		alternate = DefaultAlternateModel
	}

	clientCfg := openai.DefaultConfig(apiKey)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	if log == nil {
		log = slog.Default()
	}

	log.Debug("initializing OpenAI oracle", "model", model, "alternate_model", alternate)
	return &OpenAIOracle{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		alternate: alternate,
		log:       log,
	}, nil
}

// CallFunction implements Oracle.
//
// Description:
//
//	Sends prompt as a single user message with fn attached as the only
//	tool and tool_choice forcing the model to call it. Returns the raw
//	JSON arguments of the first tool call in the answer. The caller owns
//	decoding; this method only guarantees the bytes are valid JSON.
//
// Errors:
//
//	ErrNoFunctionCall - The model answered without calling fn.
//	ErrInvalidArguments - The call's arguments do not parse as JSON.
func (o *OpenAIOracle) CallFunction(ctx context.Context, prompt string, fn openai.FunctionDefinition) (json.RawMessage, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: []openai.Tool{
			{Type: openai.ToolTypeFunction, Function: &fn},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: fn.Name},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", fn.Name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("call %s: %w", fn.Name, ErrNoFunctionCall)
	}

	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return nil, fmt.Errorf("call %s: %w", fn.Name, ErrNoFunctionCall)
	}

	args := calls[0].Function.Arguments
	if !json.Valid([]byte(args)) {
		return nil, fmt.Errorf("call %s: %w", fn.Name, ErrInvalidArguments)
	}

	o.log.Debug("function call completed", "function", fn.Name, "bytes", len(args))
	return json.RawMessage(args), nil
}

// Generate implements Oracle.
//
// The alternate model is tried first; on any error the default model is
// retried transparently, so a missing o1 entitlement degrades instead
// of failing the run.
func (o *OpenAIOracle) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := o.complete(ctx, o.alternate, prompt)
	if err == nil {
		return text, nil
	}

	o.log.Warn("alternate model failed, falling back to default",
		"alternate_model", o.alternate, "model", o.model, "error", err)

	text, err = o.complete(ctx, o.model, prompt)
	if err != nil {
		return "", fmt.Errorf("generate with %s: %w", o.model, err)
	}
	return text, nil
}

// complete runs one plain chat completion. No system message: the
// alternate model rejects the system role.
func (o *OpenAIOracle) complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
