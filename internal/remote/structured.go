package remote

import (
	"context"
	"strings"

	"github.com/goccy/go-json"

	aierrors "github.com/liftwise/coach/pkg/errors"
	"github.com/liftwise/coach/pkg/types"
)

// formatInstruction is appended to structured prompts. Models still wrap
// output in fences often enough that stripping stays mandatory.
const formatInstruction = "\n\nRespond with a single JSON object only. " +
	"No prose, no markdown, no code fences."

// GenerateStructured asks for JSON and unmarshals it into out. A parse
// failure becomes a typed malformed-response error and is never retried:
// re-asking the same prompt rarely fixes the shape.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, opts GenOptions, feature types.Feature, out any) (*Result, error) {
	res, err := c.Generate(ctx, prompt+formatInstruction, opts, feature)
	if err != nil {
		return nil, err
	}

	cleaned := StripFences(res.Text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return nil, aierrors.NewMalformed(c.providerName(), "structured output did not parse: "+err.Error())
	}
	return res, nil
}

// StripFences removes markdown code fences and any language tag around a
// JSON payload, then trims to the outermost braces/brackets.
func StripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			// Drop a language tag like "json" on the fence line.
			first := strings.TrimSpace(s[:i])
			if len(first) <= 10 && !strings.ContainsAny(first, "{[") {
				s = s[i+1:]
			}
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	// Some models prepend prose despite the instruction. Trim to the
	// first structural opener and its matching end.
	start := strings.IndexAny(s, "{[")
	if start > 0 {
		s = s[start:]
	}
	end := strings.LastIndexAny(s, "}]")
	if end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}
	return s
}
