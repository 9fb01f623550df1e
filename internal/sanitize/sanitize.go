// Package sanitize repairs malformed JSON emitted by a language model into a
// validated question list. The repair is a fixed, non-backtracking sequence of
// string transforms; later steps assume earlier ones already ran (bracket
// clipping must precede comma balancing, and so on), so the order here is
// load-bearing.
package sanitize

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"xyen-quiz-service/internal/domain"
)

var (
	codeFenceRE    = regexp.MustCompile("```json|```")
	controlCharRE  = regexp.MustCompile(`[\x{0000}-\x{001F}\x{007F}-\x{009F}]`)
	missingCommaRE = regexp.MustCompile(`}\s*{`)
	trailingObjRE  = regexp.MustCompile(`,\s*}`)
	trailingArrRE  = regexp.MustCompile(`,\s*]`)
)

// Questions converts a raw model response into a question list, repairing the
// common ways models break their own JSON: surrounding commentary, markdown
// fences, control characters, missing or trailing commas, and truncated
// strings. Valid input passes through every step unchanged.
func Questions(raw string) ([]domain.Question, error) {
	text := stripCodeFences(raw)
	text = stripControlChars(text)
	text = escapeLoneBackslashes(text)

	text, ok := clipToArray(text)
	if !ok {
		return nil, domain.ErrUnrecoverable
	}

	text = insertMissingCommas(text)
	text = dropTrailingCommas(text)
	text = closeOpenString(text)

	var questions []domain.Question
	if err := json.Unmarshal([]byte(text), &questions); err == nil {
		return questions, nil
	}

	// The array as a whole will not parse; recover element by element and
	// keep whatever fragments still form valid questions.
	recovered := recoverElements(text)
	if len(recovered) == 0 {
		return nil, domain.ErrUnrecoverable
	}
	return recovered, nil
}

// stripCodeFences removes markdown fence tokens wrapping the payload.
func stripCodeFences(s string) string {
	return codeFenceRE.ReplaceAllString(s, "")
}

// stripControlChars removes non-printable characters that invalidate JSON text.
func stripControlChars(s string) string {
	return controlCharRE.ReplaceAllString(s, "")
}

// escapeLoneBackslashes doubles any backslash that does not begin a
// recognized JSON escape sequence.
func escapeLoneBackslashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && strings.IndexByte(`"\/bfnrtu`, s[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

// clipToArray trims the text to the substring spanning the first '[' and the
// last ']', discarding surrounding commentary. It reports false when no such
// span exists.
func clipToArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// insertMissingCommas repairs adjacent object literals ("}{" becomes "},{").
func insertMissingCommas(s string) string {
	return missingCommaRE.ReplaceAllString(s, "},{")
}

// dropTrailingCommas removes commas directly before a closing brace or bracket.
func dropTrailingCommas(s string) string {
	s = trailingObjRE.ReplaceAllString(s, "}")
	return trailingArrRE.ReplaceAllString(s, "]")
}

// closeOpenString scans the text tracking in-string and escape state and
// appends a closing quote if the scan ends while still inside a string.
func closeOpenString(s string) string {
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		}
	}
	if inString {
		return s + `"`
	}
	return s
}

// recoverElements splits the array body on top-level object boundaries and
// keeps each fragment that independently parses into a complete question.
// Unparseable fragments are logged and dropped. The split must be
// nesting-aware: the "},{" boundary also occurs inside a question's choices
// array, where cutting would destroy otherwise healthy elements.
func recoverElements(s string) []domain.Question {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") {
		return nil
	}
	body := strings.TrimSuffix(trimmed[1:], "]")

	var valid []domain.Question
	for _, fragment := range splitTopLevel(body) {
		fragment = strings.TrimSpace(fragment)
		if !strings.HasSuffix(fragment, "}") {
			fragment += "}"
		}

		var q domain.Question
		if err := json.Unmarshal([]byte(fragment), &q); err != nil {
			log.Printf("sanitize: skipping invalid question fragment: %v", err)
			continue
		}
		if q.ID == "" || q.Text == "" || q.Type == "" || len(q.Choices) == 0 {
			log.Printf("sanitize: skipping incomplete question fragment (id=%q)", q.ID)
			continue
		}
		valid = append(valid, q)
	}
	return valid
}

// splitTopLevel cuts the array body into one fragment per top-level object,
// tracking string and nesting state so boundaries inside nested arrays or
// quoted text are ignored. A trailing unclosed fragment is returned as-is for
// the caller to attempt.
func splitTopLevel(body string) []string {
	var fragments []string
	depth := 0
	inString := false
	escaped := false
	start := -1

	for i := 0; i < len(body); i++ {
		c := body[i]
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
		case '{', '[':
			if depth == 0 && c == '{' && start == -1 {
				start = i
			}
			depth++
		case '}', ']':
			depth--
			if depth == 0 && c == '}' && start != -1 {
				fragments = append(fragments, body[start:i+1])
				start = -1
			}
		}
	}
	if start != -1 {
		fragments = append(fragments, body[start:])
	}
	return fragments
}
