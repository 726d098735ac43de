// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm isolates the reasoning model behind a narrow Oracle
// interface: forced function calls for structured extraction during
// discovery, and free-form completions for code emission.
//
// The production implementation talks to the OpenAI chat-completions
// API; tests swap in the Scripted stub and never touch the network.
package llm

import "errors"

// Oracle failures are fatal to a discovery run. The engine does not
// retry: a malformed function call usually means the prompt and schema
// disagree, which a retry will not fix.
var (
	// ErrMissingAPIKey is returned by NewOpenAIOracle when no API key is
	// configured and OPENAI_API_KEY is unset.
	ErrMissingAPIKey = errors.New("missing OpenAI API key")

	// ErrNoFunctionCall is returned when the model answered with plain
	// text instead of the forced function call.
	ErrNoFunctionCall = errors.New("model response contains no function call")

	// ErrInvalidArguments is returned when the function-call arguments
	// are not valid JSON.
	ErrInvalidArguments = errors.New("function call arguments are not valid JSON")

	// ErrEmptyCompletion is returned by Generate when the model produced
	// no usable text.
	ErrEmptyCompletion = errors.New("model returned an empty completion")

	// ErrScriptExhausted is returned by the Scripted stub when a call
	// arrives with nothing queued for it.
	ErrScriptExhausted = errors.New("scripted oracle has no response queued")
)
