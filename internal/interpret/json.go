package interpret

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// extractJSON finds the first balanced JSON object in a string, stripping
// the markdown fences models like to wrap output in.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	// Unbalanced; return the tail and let repair take a shot at it.
	return strings.TrimSpace(s[start:])
}

// looseJSON validates candidate as JSON, repairing it first when the
// strict parse fails. The returned source records whether repair was
// needed.
func looseJSON(candidate string) ([]byte, Source, bool) {
	if json.Valid([]byte(candidate)) {
		return []byte(candidate), SourceStructured, true
	}
	fixed, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, "", false
	}
	if !json.Valid([]byte(fixed)) {
		return nil, "", false
	}
	return []byte(fixed), SourceRepaired, true
}
