package assessment

import (
	"fmt"
	"sort"

	"reset-recovery-backend/internal/apperr"
	"reset-recovery-backend/internal/recovery"
)

const (
	NumQuestions = 6
	MinAnswer    = 1
	MaxAnswer    = 4

	MinScore = NumQuestions * MinAnswer
	MaxScore = NumQuestions * MaxAnswer

	// upper bounds (inclusive) of the normalized score per stage
	mildUpperBound     = 40.0
	moderateUpperBound = 70.0
)

// Responses maps question number (1..6) to the selected answer value (1..4).
type Responses map[int]int

type Result struct {
	Total      int            `json:"score"`
	Normalized float64        `json:"normalized_score"`
	Stage      recovery.Stage `json:"stage"`
}

// Score sums the answers and classifies the normalized score. Every
// question must be answered; nothing is classified otherwise.
func Score(r Responses) (Result, error) {
	var unknown []int
	for id := range r {
		if id < 1 || id > NumQuestions {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Ints(unknown)
		return Result{}, apperr.Validationf("unknown question ids %v", unknown)
	}

	total := 0
	for id := 1; id <= NumQuestions; id++ {
		v, ok := r[id]
		if !ok {
			return Result{}, apperr.Validationf("question %d is unanswered", id)
		}
		if v < MinAnswer || v > MaxAnswer {
			return Result{}, apperr.Validationf("question %d answer %d is out of range %d..%d", id, v, MinAnswer, MaxAnswer)
		}
		total += v
	}

	normalized := Normalize(total)
	return Result{Total: total, Normalized: normalized, Stage: Classify(normalized)}, nil
}

// Normalize maps a raw total onto 0..100.
func Normalize(total int) float64 {
	return float64(total) / float64(NumQuestions*MaxAnswer) * 100
}

// Classify: <=40 mild, <=70 moderate, otherwise severe.
func Classify(normalized float64) recovery.Stage {
	switch {
	case normalized <= mildUpperBound:
		return recovery.StageMild
	case normalized <= moderateUpperBound:
		return recovery.StageModerate
	default:
		return recovery.StageSevere
	}
}

// String is used in log lines.
func (r Result) String() string {
	return fmt.Sprintf("%d/%d (%.1f) %s", r.Total, MaxScore, r.Normalized, r.Stage)
}
