// Package catalog holds the static content the service is driven by: the
// assessment questionnaire, per-stage prompt guidelines, the fallback task
// pool used to backfill short AI output, and mood check-in feedback.
//
// The defaults are embedded; CATALOG_PATH points at a YAML file with the same
// shape to replace them.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"reset-recovery-backend/internal/recovery"
)

//go:embed default.yaml
var defaultYAML []byte

type Option struct {
	Value int    `yaml:"value" json:"value"`
	Text  string `yaml:"text" json:"text"`
}

type Question struct {
	ID      int      `yaml:"id" json:"id"`
	Text    string   `yaml:"text" json:"question"`
	Options []Option `yaml:"options" json:"options"`
}

type Task struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Category    recovery.Category `yaml:"category"`
}

type Catalog struct {
	Questions       []Question                `yaml:"questions"`
	StageGuidelines map[recovery.Stage]string `yaml:"stage_guidelines"`
	FallbackTasks   []Task                    `yaml:"fallback_tasks"`
	MoodFeedback    map[string]string         `yaml:"mood_feedback"`
}

// Moods accepted by the check-in, in display order.
var Moods = []string{"happy", "neutral", "sad", "stressed"}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks what the scoring engine and the normalizer rely on.
func (c *Catalog) Validate() error {
	if len(c.Questions) != 6 {
		return fmt.Errorf("catalog: want 6 questions, got %d", len(c.Questions))
	}
	for i, q := range c.Questions {
		if q.ID != i+1 {
			return fmt.Errorf("catalog: question %d has id %d, ids must run 1..6 in order", i+1, q.ID)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("catalog: question %d needs 4 options, got %d", q.ID, len(q.Options))
		}
		seen := map[int]bool{}
		for _, o := range q.Options {
			if o.Value < 1 || o.Value > 4 || seen[o.Value] {
				return fmt.Errorf("catalog: question %d option values must be 1..4 without repeats", q.ID)
			}
			seen[o.Value] = true
		}
	}

	for _, s := range recovery.Stages {
		if c.StageGuidelines[s] == "" {
			return fmt.Errorf("catalog: missing stage guideline for %q", s)
		}
	}

	if len(c.FallbackTasks) == 0 {
		return fmt.Errorf("catalog: fallback task pool is empty")
	}
	for i, t := range c.FallbackTasks {
		if t.Title == "" {
			return fmt.Errorf("catalog: fallback task %d has no title", i)
		}
		if !t.Category.Valid() {
			return fmt.Errorf("catalog: fallback task %q has unknown category %q", t.Title, t.Category)
		}
	}

	for _, m := range Moods {
		if c.MoodFeedback[m] == "" {
			return fmt.Errorf("catalog: missing mood feedback for %q", m)
		}
	}
	return nil
}
