// Package steps defines the stages of a resume generation run and their ordering.
package steps

import (
	"fmt"
	"sort"
)

// Step names
const (
	Extract  = "extract"
	Complete = "complete"
	Classify = "classify"
	Build    = "build"
	Export   = "export"
)

// Step categories
const (
	CategoryInput      = "input"
	CategoryGeneration = "generation"
	CategoryFormatting = "formatting"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Order        int
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	Extract: {
		Name:     Extract,
		Category: CategoryInput,
		Order:    1,
	},
	Complete: {
		Name:         Complete,
		Category:     CategoryGeneration,
		Order:        2,
		Dependencies: []string{Extract},
	},
	Classify: {
		Name:         Classify,
		Category:     CategoryFormatting,
		Order:        3,
		Dependencies: []string{Complete},
	},
	Build: {
		Name:         Build,
		Category:     CategoryFormatting,
		Order:        4,
		Dependencies: []string{Classify},
	},
	Export: {
		Name:         Export,
		Category:     CategoryFormatting,
		Order:        5,
		Dependencies: []string{Build},
	},
}

// Ordered returns the step definitions in execution order.
func Ordered() []StepDefinition {
	defs := make([]StepDefinition, 0, len(StepRegistry))
	for _, def := range StepRegistry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Order < defs[j].Order })
	return defs
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Tracker records the steps completed during one run.
type Tracker struct {
	completed map[string]bool
}

// NewTracker returns a tracker with the given steps already completed.
func NewTracker(completed ...string) *Tracker {
	t := &Tracker{completed: make(map[string]bool)}
	for _, step := range completed {
		t.completed[step] = true
	}
	return t
}

// ValidateDependencies checks that every dependency of stepName has completed.
func (t *Tracker) ValidateDependencies(stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !t.completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

// Complete marks stepName as done after checking its dependencies.
func (t *Tracker) Complete(stepName string) error {
	if err := t.ValidateDependencies(stepName); err != nil {
		return err
	}
	t.completed[stepName] = true
	return nil
}

// Done reports whether stepName has completed.
func (t *Tracker) Done(stepName string) bool {
	return t.completed[stepName]
}

// Label renders "Step i/n" for progress output.
func Label(stepName string) string {
	def, ok := StepRegistry[stepName]
	if !ok {
		return stepName
	}
	return fmt.Sprintf("Step %d/%d", def.Order, len(StepRegistry))
}
