// Package tokenizer provides unit counting for budgets and context
// compression. Usage accounting prefers tiktoken when an encoding is
// available; compression budgets use a fixed characters-per-unit ratio,
// which is deliberately approximate and cheap.
package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// CharsPerUnit is the fixed ratio used for budget estimation when exact
// tokenization is unavailable or not worth the cost.
const CharsPerUnit = 4

var (
	encodingCache sync.Map // model -> *tiktoken.Tiktoken, non-nil only
	defaultOnce   sync.Once
	defaultEnc    *tiktoken.Tiktoken
)

// CountTextTokens returns the token count for text using tiktoken. If no
// encoding can be loaded (e.g. offline), it falls back to EstimateUnits.
func CountTextTokens(model, text string) int {
	if text == "" {
		return 0
	}
	enc := getEncoding(model)
	if enc == nil {
		return EstimateUnits(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateUnits estimates units from raw length at the fixed ratio.
func EstimateUnits(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / CharsPerUnit
	if n < 1 {
		n = 1
	}
	return n
}

func getEncoding(model string) *tiktoken.Tiktoken {
	if model != "" {
		if cached, ok := encodingCache.Load(model); ok {
			return cached.(*tiktoken.Tiktoken)
		}
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			encodingCache.Store(model, enc)
			return enc
		}
	}

	// Unknown models share the default encoding so the same model is
	// counted the same way on every call.
	defaultOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			defaultEnc = enc
		}
	})
	return defaultEnc
}
