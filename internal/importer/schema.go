package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture is the top-level structure of a program fixture file. Refs are
// file-local names; Convert replaces them with generated ids. Step refs are
// shared across programs so constraints may cross program boundaries.
type Fixture struct {
	Users       []UserImport       `json:"users" yaml:"users"`
	Programs    []ProgramImport    `json:"programs" yaml:"programs"`
	Constraints []ConstraintImport `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Assignments []AssignmentImport `json:"assignments,omitempty" yaml:"assignments,omitempty"`
}

type UserImport struct {
	Ref                string `json:"ref" yaml:"ref"`
	Name               string `json:"name" yaml:"name"`
	Email              string `json:"email" yaml:"email"`
	Department         string `json:"department,omitempty" yaml:"department,omitempty"`
	MaxConcurrentSteps *int   `json:"max_concurrent_steps,omitempty" yaml:"max_concurrent_steps,omitempty"`
}

type ProgramImport struct {
	Ref         string       `json:"ref" yaml:"ref"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []StepImport `json:"steps" yaml:"steps"`
}

type StepImport struct {
	Ref          string `json:"ref" yaml:"ref"`
	Title        string `json:"title" yaml:"title"`
	Order        *int   `json:"order,omitempty" yaml:"order,omitempty"`
	DurationDays *int   `json:"duration_days,omitempty" yaml:"duration_days,omitempty"`
	Required     *bool  `json:"required,omitempty" yaml:"required,omitempty"`
}

// ConstraintImport is either a dependency (prerequisite_ref set) or a fixed
// window (window_start set) on dependent_ref.
type ConstraintImport struct {
	Type            string  `json:"type" yaml:"type"`
	PrerequisiteRef string  `json:"prerequisite_ref,omitempty" yaml:"prerequisite_ref,omitempty"`
	DependentRef    string  `json:"dependent_ref" yaml:"dependent_ref"`
	WindowStart     *string `json:"window_start,omitempty" yaml:"window_start,omitempty"`
	WindowEnd       *string `json:"window_end,omitempty" yaml:"window_end,omitempty"`
}

type AssignmentImport struct {
	UserRef    string           `json:"user_ref" yaml:"user_ref"`
	ProgramRef string           `json:"program_ref" yaml:"program_ref"`
	Status     string           `json:"status,omitempty" yaml:"status,omitempty"`
	AssignedAt string           `json:"assigned_at" yaml:"assigned_at"`
	Progress   []ProgressImport `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// ProgressImport seeds the tracked state of one step. Planning fields are
// never imported; the scheduler owns them.
type ProgressImport struct {
	StepRef     string  `json:"step_ref" yaml:"step_ref"`
	Status      string  `json:"status" yaml:"status"`
	CompletedAt *string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// LoadFixture reads a fixture from a .json, .yaml or .yml file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(data, filepath.Ext(path))
}

// ParseFixture decodes data according to ext. Anything other than ".json"
// is treated as YAML.
func ParseFixture(data []byte, ext string) (*Fixture, error) {
	var f Fixture
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing fixture: %w", err)
		}
		return &f, nil
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}
