package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reset-recovery-backend/internal/catalog"
	"reset-recovery-backend/internal/recovery"
)

func guidelines(t *testing.T) map[recovery.Stage]string {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c.StageGuidelines
}

func TestBuildTaskPrompt(t *testing.T) {
	g := guidelines(t)
	in := PromptInput{
		Stage:        recovery.StageModerate,
		RecentScores: []int{14, 18, 20},
		RecentTasks: []TaskOutcome{
			{Title: "Body Scan", Completed: true},
			{Title: "10-Minute Walk", Completed: false},
			{Title: "Body Scan", Completed: true},
		},
		Count: 4,
	}
	p := BuildTaskPrompt(in, g)

	assert.True(t, strings.HasPrefix(p, "Generate 4 personalized daily recovery tasks for someone in the moderate stage of addiction recovery."))
	assert.Contains(t, p, "Their latest assessment score was 14/24.")
	assert.Contains(t, p, "They have a 67% task completion rate this week.")
	assert.Contains(t, p, "- Mild: "+g[recovery.StageMild])
	assert.Contains(t, p, "- Moderate: "+g[recovery.StageModerate])
	assert.Contains(t, p, "- Severe: "+g[recovery.StageSevere])
	assert.Contains(t, p, `"category": "mindfulness|physical|social|reflection"`)
	assert.Contains(t, p, "max 50 chars")
	assert.Contains(t, p, "max 150 chars")
	assert.Contains(t, p, "- Appropriate for moderate stage")
	assert.Equal(t, 1, strings.Count(p, "- Body Scan\n"), "recent titles are deduplicated")

	assert.Equal(t, p, BuildTaskPrompt(in, g), "same input, same prompt")
}

func TestBuildTaskPromptWithoutHistory(t *testing.T) {
	p := BuildTaskPrompt(PromptInput{Stage: recovery.StageMild}, guidelines(t))
	assert.True(t, strings.HasPrefix(p, "Generate 5 personalized"))
	assert.NotContains(t, p, "/24")
	assert.NotContains(t, p, "completion rate")
	assert.NotContains(t, p, "Recent tasks:")
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, CompletionRate(nil))
	assert.Equal(t, 50, CompletionRate([]TaskOutcome{{Completed: true}, {}}))
	assert.Equal(t, 33, CompletionRate([]TaskOutcome{{Completed: true}, {}, {}}))
	assert.Equal(t, 100, CompletionRate([]TaskOutcome{{Completed: true}}))
}
