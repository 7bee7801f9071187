package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/recovery"
)

const (
	// MaxTasks caps the output regardless of the requested count.
	MaxTasks = 5

	MaxTitleLen       = 80
	MaxDescriptionLen = 200
)

// NormalizeTasks parses model output and returns exactly min(requested, MaxTasks)
// tasks. Only unparseable JSON is an error; every other shape problem is coerced,
// and a short list is backfilled from pool cycling from index 0.
func NormalizeTasks(raw string, requested int, pool []TaskSuggestion) ([]TaskSuggestion, error) {
	want := requested
	if want <= 0 {
		want = DefaultTaskCount
	}
	if want > MaxTasks {
		want = MaxTasks
	}

	dec := json.NewDecoder(strings.NewReader(stripFence(raw)))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, apperr.MalformedAIResponse(err)
	}
	if dec.More() {
		return nil, apperr.MalformedAIResponse(fmt.Errorf("trailing data after json value"))
	}

	items, _ := parsed.([]any)

	out := make([]TaskSuggestion, 0, want)
	for _, it := range items {
		if len(out) == want {
			break
		}
		out = append(out, coerceTask(it))
	}

	for i := 0; len(out) < want && len(pool) > 0; i++ {
		out = append(out, clampTask(pool[i%len(pool)]))
	}
	return out, nil
}

// clampTask applies the stored length limits to a fallback task.
func clampTask(t TaskSuggestion) TaskSuggestion {
	t.Title = truncate(strings.TrimSpace(t.Title), MaxTitleLen)
	t.Description = truncate(strings.TrimSpace(t.Description), MaxDescriptionLen)
	return t
}

func coerceTask(v any) TaskSuggestion {
	obj, _ := v.(map[string]any)
	return TaskSuggestion{
		Title:       truncate(strings.TrimSpace(stringify(obj["title"])), MaxTitleLen),
		Description: truncate(strings.TrimSpace(stringify(obj["description"])), MaxDescriptionLen),
		Category:    recovery.ParseCategory(stringify(obj["category"])),
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// stripFence removes one ```json ... ``` wrapper.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// drop the language tag on the opening line
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "[{") {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSpace(s)
}
