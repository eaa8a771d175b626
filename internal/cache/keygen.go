package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/liftwise/coach/pkg/types"
)

// keyPrefix namespaces cache keys in shared device storage.
const keyPrefix = "coach"

// GenerateKey derives a deterministic cache key from a feature and its
// request parameters. Two logically identical requests collide to the
// same key regardless of map iteration or insertion order.
func GenerateKey(feature types.Feature, params map[string]any) string {
	var sb strings.Builder
	sb.WriteString("feature:")
	sb.WriteString(string(feature))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString("|")
		sb.WriteString(k)
		sb.WriteString(":")
		sb.WriteString(canonical(params[k]))
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, feature, hex.EncodeToString(sum[:]))
}

// canonical renders a parameter value in a stable form. JSON marshaling
// sorts nested map keys, which keeps composite values order-independent.
func canonical(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}
