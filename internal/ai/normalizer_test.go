package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/catalog"
	"reset-recovery-backend/internal/recovery"
)

func testPool(t *testing.T) []TaskSuggestion {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return Pool(c.FallbackTasks)
}

func TestNormalizeMalformed(t *testing.T) {
	for _, raw := range []string{"not json", "", `[{"title":"a"}`, `[] []`} {
		out, err := NormalizeTasks(raw, 5, testPool(t))
		assert.Nil(t, out, raw)
		assert.True(t, apperr.Is(err, apperr.KindMalformedAI), raw)
	}
}

func TestNormalizeBackfillsFromPool(t *testing.T) {
	pool := testPool(t)
	raw := `[
		{"title":"Morning pages","description":"Write three pages","category":"reflection"},
		{"title":"Call a friend","description":"Ten minutes","category":"social"}
	]`
	out, err := NormalizeTasks(raw, 5, pool)
	require.NoError(t, err)
	require.Len(t, out, 5)

	want := []TaskSuggestion{
		{Title: "Morning pages", Description: "Write three pages", Category: recovery.CategoryReflection},
		{Title: "Call a friend", Description: "Ten minutes", Category: recovery.CategorySocial},
		pool[0], pool[1], pool[2],
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("NormalizeTasks() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeTruncatesPoolEntries(t *testing.T) {
	pool := []TaskSuggestion{{
		Title:       strings.Repeat("п", 120),
		Description: strings.Repeat("d", 300),
		Category:    recovery.CategoryMindfulness,
	}}
	out, err := NormalizeTasks(`[]`, 2, pool)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, task := range out {
		assert.Equal(t, MaxTitleLen, utf8.RuneCountInString(task.Title))
		assert.Equal(t, MaxDescriptionLen, utf8.RuneCountInString(task.Description))
		assert.Equal(t, recovery.CategoryMindfulness, task.Category)
	}
	assert.Equal(t, 120, utf8.RuneCountInString(pool[0].Title))
}

func TestNormalizeKeepsFirstN(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 8; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"title":"t` + string(rune('0'+i)) + `","description":"d","category":"physical"}`)
	}
	b.WriteString("]")

	out, err := NormalizeTasks(b.String(), 5, testPool(t))
	require.NoError(t, err)
	require.Len(t, out, 5)
	for i, task := range out {
		assert.Equal(t, "t"+string(rune('0'+i)), task.Title)
	}
}

func TestNormalizeCount(t *testing.T) {
	pool := testPool(t)
	cases := map[int]int{-1: 5, 0: 5, 1: 1, 3: 3, 5: 5, 10: 5}
	for requested, want := range cases {
		out, err := NormalizeTasks(`[]`, requested, pool)
		require.NoError(t, err)
		assert.Len(t, out, want, "requested %d", requested)
	}

	// pool cycles when it is shorter than the gap
	out, err := NormalizeTasks(`{}`, 5, pool[:2])
	require.NoError(t, err)
	assert.Equal(t, []TaskSuggestion{pool[0], pool[1], pool[0], pool[1], pool[0]}, out)
}

func TestNormalizeCoercion(t *testing.T) {
	long := strings.Repeat("é", 120)
	raw := "```json\n" + `[
		{"title": 42, "description": null, "category": " Mindfulness "},
		{"title": "` + long + `", "description": "` + strings.Repeat("x", 250) + `", "category": "spiritual"},
		"just a string",
		{"title": {"nested": true}, "description": ["a", 1], "category": 7}
	]` + "\n```"

	out, err := NormalizeTasks(raw, 5, nil)
	require.NoError(t, err)
	require.Len(t, out, 4, "nil pool cannot backfill")

	assert.Equal(t, TaskSuggestion{Title: "42", Description: "", Category: recovery.CategoryMindfulness}, out[0])

	assert.Equal(t, MaxTitleLen, len([]rune(out[1].Title)))
	assert.Len(t, out[1].Description, MaxDescriptionLen)
	assert.Equal(t, recovery.CategoryReflection, out[1].Category)

	assert.Equal(t, TaskSuggestion{Category: recovery.CategoryReflection}, out[2])

	assert.Equal(t, `{"nested":true}`, out[3].Title)
	assert.Equal(t, `["a",1]`, out[3].Description)
	assert.Equal(t, recovery.CategoryReflection, out[3].Category)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `[1]`, stripFence("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, stripFence("```\n[1]\n```"))
	assert.Equal(t, `[1]`, stripFence("```json[1]```"))
	assert.Equal(t, `[1]`, stripFence("  [1] "))
}
