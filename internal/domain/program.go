package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	// DefaultSetCount is used when an exercise template does not say how many sets to do.
	DefaultSetCount = 3
	// MaxSetCount bounds the sets of one exercise, in templates and sessions alike.
	MaxSetCount = 50
)

// Program is a template exercise list (a "program" a trainer assigns).
type Program struct {
	ID        string         `json:"id"`
	GymID     string         `json:"gymId"`
	Name      string         `json:"name"`
	Category  string         `json:"category,omitempty"`
	Type      string         `json:"type,omitempty"`
	Exercises []PlanExercise `json:"exercises"`
}

// WorkoutPlan is a runnable routine. Multi-day plans leave Exercises empty and use Schedule.
type WorkoutPlan struct {
	ID        string         `json:"id"`
	GymID     string         `json:"gymId"`
	Name      string         `json:"name"`
	Code      string         `json:"code,omitempty"`
	CreatedBy string         `json:"createdBy,omitempty"`
	Exercises []PlanExercise `json:"exercises,omitempty"`
	Schedule  []ScheduleDay  `json:"schedule,omitempty"`
}

// ScheduleDay is one day of a multi-day plan.
type ScheduleDay struct {
	Focus     string         `json:"focus"`
	Exercises []PlanExercise `json:"exercises"`
}

// PlanExercise is an exercise as written in a program or plan template.
type PlanExercise struct {
	Name        string  `json:"name"`
	Sets        SetSpec `json:"sets"`
	Reps        int     `json:"reps,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	RestSeconds int     `json:"restSeconds,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// SetSpec holds a template's set specification, which is stored either as a
// plain count or as an explicit list of sets.
type SetSpec struct {
	Count int
	List  []WorkoutSet
}

// IsList reports whether the template carried explicit set objects.
func (s SetSpec) IsList() bool {
	return s.List != nil
}

func (s SetSpec) MarshalJSON() ([]byte, error) {
	if s.List != nil {
		return json.Marshal(s.List)
	}
	if s.Count > 0 {
		return json.Marshal(s.Count)
	}
	return []byte("null"), nil
}

func (s *SetSpec) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = SetSpec{}
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '[':
		list := []WorkoutSet{}
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		s.List = list
		return s.Validate()
	case b[0] == '"':
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid set count %q", raw)
		}
		return s.setCount(float64(n))
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		return s.setCount(f)
	}
}

// setCount stores an explicitly written count, which must lie in 1..MaxSetCount.
func (s *SetSpec) setCount(f float64) error {
	if f < 1 || f > MaxSetCount {
		return fmt.Errorf("set count %v must be between 1 and %d", f, MaxSetCount)
	}
	s.Count = int(f)
	return nil
}

// Validate rejects negative counts and more than MaxSetCount sets. A zero
// Count means the template did not say.
func (s SetSpec) Validate() error {
	if s.Count < 0 || s.Count > MaxSetCount {
		return fmt.Errorf("set count %d must be between 1 and %d", s.Count, MaxSetCount)
	}
	if len(s.List) > MaxSetCount {
		return fmt.Errorf("%d sets exceed the limit of %d", len(s.List), MaxSetCount)
	}
	return nil
}

// ValidateExercises checks the set specification of every exercise.
func ValidateExercises(exercises []PlanExercise) error {
	for _, e := range exercises {
		if err := e.Sets.Validate(); err != nil {
			return fmt.Errorf("exercise %q: %w", e.Name, err)
		}
	}
	return nil
}

// Validate checks every exercise of the plan, scheduled days included.
func (p WorkoutPlan) Validate() error {
	if err := ValidateExercises(p.Exercises); err != nil {
		return err
	}
	for _, day := range p.Schedule {
		if err := ValidateExercises(day.Exercises); err != nil {
			return fmt.Errorf("day %q: %w", day.Focus, err)
		}
	}
	return nil
}

// Normalize expands the exercise's sets. An explicit list is
// used as-is; a count (or a missing count) is synthesized from the template
// defaults with every set not completed, capped at MaxSetCount.
func (e PlanExercise) Normalize() []WorkoutSet {
	if e.Sets.IsList() {
		sets := make([]WorkoutSet, len(e.Sets.List))
		copy(sets, e.Sets.List)
		return sets
	}
	n := e.Sets.Count
	if n <= 0 {
		n = DefaultSetCount
	}
	n = min(n, MaxSetCount)
	sets := make([]WorkoutSet, n)
	for i := range sets {
		sets[i] = WorkoutSet{Reps: e.Reps, Weight: e.Weight, Completed: false}
	}
	return sets
}
