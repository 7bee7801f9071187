package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/recovery"
)

func uniform(v int) Responses {
	r := Responses{}
	for id := 1; id <= NumQuestions; id++ {
		r[id] = v
	}
	return r
}

func TestScoreScenarios(t *testing.T) {
	cases := []struct {
		name       string
		in         Responses
		total      int
		normalized float64
		stage      recovery.Stage
	}{
		{"low use, highly motivated", Responses{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 4}, 9, 37.5, recovery.StageMild},
		{"all twos", uniform(2), 12, 50, recovery.StageModerate},
		{"all threes", uniform(3), 18, 75, recovery.StageSevere},
		{"all ones", uniform(1), 6, 25, recovery.StageMild},
		{"all fours", uniform(4), 24, 100, recovery.StageSevere},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Score(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.total, res.Total)
			assert.InDelta(t, tc.normalized, res.Normalized, 1e-9)
			assert.Equal(t, tc.stage, res.Stage)
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, recovery.StageMild, Classify(40))
	assert.Equal(t, recovery.StageModerate, Classify(40.0001))
	assert.Equal(t, recovery.StageModerate, Classify(70))
	assert.Equal(t, recovery.StageSevere, Classify(70.0001))
}

// Every possible answer sheet stays in range and the stage never goes down as the total goes up.
func TestScoreRangeAndMonotonicity(t *testing.T) {
	rank := map[recovery.Stage]int{recovery.StageMild: 0, recovery.StageModerate: 1, recovery.StageSevere: 2}
	stageByTotal := map[int]recovery.Stage{}

	answers := make([]int, NumQuestions)
	var walk func(i int)
	walk = func(i int) {
		if i == NumQuestions {
			r := Responses{}
			for q, v := range answers {
				r[q+1] = v
			}
			res, err := Score(r)
			require.NoError(t, err)
			require.GreaterOrEqual(t, res.Total, MinScore)
			require.LessOrEqual(t, res.Total, MaxScore)
			if prev, ok := stageByTotal[res.Total]; ok {
				require.Equal(t, prev, res.Stage, "stage must depend only on the total")
			}
			stageByTotal[res.Total] = res.Stage
			return
		}
		for v := MinAnswer; v <= MaxAnswer; v++ {
			answers[i] = v
			walk(i + 1)
		}
	}
	walk(0)

	for total := MinScore + 1; total <= MaxScore; total++ {
		assert.GreaterOrEqual(t, rank[stageByTotal[total]], rank[stageByTotal[total-1]], "total %d", total)
	}
}

func TestScoreRejectsIncompleteSheets(t *testing.T) {
	t.Run("unanswered", func(t *testing.T) {
		r := uniform(2)
		delete(r, 4)
		_, err := Score(r)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Contains(t, err.Error(), "question 4 is unanswered")
	})

	t.Run("out of range", func(t *testing.T) {
		r := uniform(2)
		r[2] = 5
		_, err := Score(r)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("unknown question", func(t *testing.T) {
		r := uniform(2)
		r[7] = 1
		_, err := Score(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[7]")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Score(nil)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}
