package ai

import (
	"fmt"
	"math"
	"strings"

	"reset-recovery-backend/internal/recovery"
)

const (
	DefaultTaskCount = 5
	MaxRequestCount  = 10
)

type PromptInput struct {
	Stage recovery.Stage
	// newest first
	RecentScores []int
	RecentTasks  []TaskOutcome
	Count        int
}

// BuildTaskPrompt детерминированно собирает промпт для генерации задач
func BuildTaskPrompt(in PromptInput, guidelines map[recovery.Stage]string) string {
	count := in.Count
	if count <= 0 {
		count = DefaultTaskCount
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d personalized daily recovery tasks for someone in the %s stage of addiction recovery.", count, in.Stage)

	if len(in.RecentScores) > 0 {
		fmt.Fprintf(&b, " Their latest assessment score was %d/24.", in.RecentScores[0])
	}

	if len(in.RecentTasks) > 0 {
		fmt.Fprintf(&b, " They have a %d%% task completion rate this week.", CompletionRate(in.RecentTasks))
	}

	b.WriteString("\n\nStage Guidelines:\n")
	for _, s := range recovery.Stages {
		b.WriteString("- ")
		b.WriteString(s.Title())
		b.WriteString(": ")
		b.WriteString(guidelines[s])
		b.WriteString("\n")
	}

	b.WriteString(`
Return ONLY a JSON array with this exact structure:
[
  {
    "title": "Task name (max 50 chars)",
    "description": "Clear, actionable description (max 150 chars)",
    "category": "mindfulness|physical|social|reflection"
  }
]

Make tasks:
- Specific and actionable
`)
	fmt.Fprintf(&b, "- Appropriate for %s stage\n", in.Stage)
	b.WriteString("- Varied across categories\n")
	b.WriteString("- Encouraging but realistic\n")
	b.WriteString("- Different from recent tasks if provided\n")

	if titles := recentTitles(in.RecentTasks); len(titles) > 0 {
		b.WriteString("\nRecent tasks:\n")
		for _, t := range titles {
			b.WriteString("- ")
			b.WriteString(t)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// CompletionRate is the completed share of tasks as a whole percentage.
func CompletionRate(tasks []TaskOutcome) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(tasks)) * 100))
}

// recentTitles dedupes titles keeping first-seen order.
func recentTitles(tasks []TaskOutcome) []string {
	seen := make(map[string]bool, len(tasks))
	var out []string
	for _, t := range tasks {
		title := strings.TrimSpace(t.Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, title)
	}
	return out
}
