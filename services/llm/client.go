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

	"github.com/sashabaranov/go-openai"
)

// Oracle is the reasoning interface the discovery engine depends on.
//
// Description:
//
//	CallFunction carries every structured decision the engine delegates
//	to the model: which captured URL performs the user's action, which
//	parts of a request are dynamic, which candidate producer is the
//	simplest. The function definition pins the answer to a JSON schema
//	and the model is forced to call it, so the engine never parses
//	prose. Generate is free-form and is used only by the emission stage,
//	where the answer is code rather than a decision.
//
// Thread Safety:
//
//	Implementations must be safe for concurrent use; the engine itself
//	is single-threaded but shares one Oracle across runs.
type Oracle interface {
	// CallFunction sends prompt together with a single function
	// definition the model is forced to call, and returns the raw JSON
	// arguments of that call.
	CallFunction(ctx context.Context, prompt string, fn openai.FunctionDefinition) (json.RawMessage, error)

	// Generate returns the completion text for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
