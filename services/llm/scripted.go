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
	"sync"

	"github.com/sashabaranov/go-openai"
)

// ScriptedCall records one CallFunction invocation against a Scripted
// oracle: which function was forced and the full prompt text.
type ScriptedCall struct {
	Function string
	Prompt   string
}

// Scripted is a deterministic Oracle for tests.
//
// Description:
//
//	Responses are queued per function name and popped FIFO as calls
//	arrive, so a test script does not depend on the exact interleaving
//	of different function calls. Generate responses share one FIFO
//	queue. Every invocation is recorded for later assertions. A call
//	with nothing queued fails with ErrScriptExhausted, which surfaces
//	as a fatal engine error and makes an over-running test loud.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Scripted struct {
	mu        sync.Mutex
	functions map[string][]json.RawMessage
	generated []string
	calls     []ScriptedCall
	prompts   []string
}

// Ensure Scripted implements Oracle
var _ Oracle = (*Scripted)(nil)

// NewScripted returns an empty scripted oracle.
func NewScripted() *Scripted {
	return &Scripted{functions: make(map[string][]json.RawMessage)}
}

// Queue appends a canned arguments payload for the named function and
// returns the oracle for chaining.
func (s *Scripted) Queue(function, arguments string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.functions[function] = append(s.functions[function], json.RawMessage(arguments))
	return s
}

// QueueGenerate appends a canned completion and returns the oracle for
// chaining.
func (s *Scripted) QueueGenerate(text string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated = append(s.generated, text)
	return s
}

// CallFunction implements Oracle by popping the next queued payload for
// fn.Name.
func (s *Scripted) CallFunction(ctx context.Context, prompt string, fn openai.FunctionDefinition) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, ScriptedCall{Function: fn.Name, Prompt: prompt})

	queue := s.functions[fn.Name]
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrScriptExhausted, fn.Name)
	}
	next := queue[0]
	s.functions[fn.Name] = queue[1:]
	return next, nil
}

// Generate implements Oracle by popping the next queued completion.
func (s *Scripted) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)

	if len(s.generated) == 0 {
		return "", fmt.Errorf("%w: generate", ErrScriptExhausted)
	}
	next := s.generated[0]
	s.generated = s.generated[1:]
	return next, nil
}

// Calls returns a copy of every recorded CallFunction invocation in
// arrival order.
func (s *Scripted) Calls() []ScriptedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScriptedCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// GeneratePrompts returns a copy of every recorded Generate prompt in
// arrival order.
func (s *Scripted) GeneratePrompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}
