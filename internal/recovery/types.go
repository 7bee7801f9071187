// Package recovery holds the small set of domain enums shared by the
// assessment, task and profile packages.
package recovery

import "strings"

type Stage string

const (
	StageMild     Stage = "mild"
	StageModerate Stage = "moderate"
	StageSevere   Stage = "severe"
)

// Stages in increasing order of severity.
var Stages = []Stage{StageMild, StageModerate, StageSevere}

func (s Stage) Valid() bool {
	switch s {
	case StageMild, StageModerate, StageSevere:
		return true
	}
	return false
}

// Title returns the stage name with an upper-case first letter ("Mild").
func (s Stage) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func ParseStage(v string) (Stage, bool) {
	s := Stage(strings.ToLower(strings.TrimSpace(v)))
	return s, s.Valid()
}

type Category string

const (
	CategoryMindfulness Category = "mindfulness"
	CategoryPhysical    Category = "physical"
	CategorySocial      Category = "social"
	CategoryReflection  Category = "reflection"
)

var Categories = []Category{CategoryMindfulness, CategoryPhysical, CategorySocial, CategoryReflection}

// DefaultCategory is used whenever a task arrives with a missing or unknown category.
const DefaultCategory = CategoryReflection

func (c Category) Valid() bool {
	switch c {
	case CategoryMindfulness, CategoryPhysical, CategorySocial, CategoryReflection:
		return true
	}
	return false
}

// ParseCategory lower-cases v and falls back to DefaultCategory when it is not a known category.
func ParseCategory(v string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(v)))
	if !c.Valid() {
		return DefaultCategory
	}
	return c
}
