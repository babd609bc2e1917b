package service

import (
	"alcyxob/gymhub/internal/domain"
	"fmt"
)

// SessionUpdate is one change to an active session. Each variant validates
// its own indexes, so a malformed update never reaches the store.
type SessionUpdate interface {
	apply(s *domain.ActiveWorkoutSession) error
}

// UpdateSet edits one set; nil fields are left as they are.
type UpdateSet struct {
	Exercise  int
	Set       int
	Reps      *int
	Weight    *float64
	Completed *bool
}

// AddSet appends a set copied from the exercise's last set, not completed.
type AddSet struct {
	Exercise int
}

type RemoveSet struct {
	Exercise int
	Set      int
}

// AddExercise appends an exercise, normalizing its sets like StartWorkout does.
type AddExercise struct {
	Exercise domain.PlanExercise
}

type RemoveExercise struct {
	Exercise int
}

type SetSessionNotes struct {
	Notes string
}

// CancelSession is the explicit "clear" update; it is handled as CancelActiveWorkout.
type CancelSession struct{}

func exerciseAt(s *domain.ActiveWorkoutSession, i int) (*domain.SessionExercise, error) {
	if i < 0 || i >= len(s.Exercises) {
		return nil, fmt.Errorf("%w: exercise %d out of range", ErrInvalidUpdate, i)
	}
	return &s.Exercises[i], nil
}

func (u UpdateSet) apply(s *domain.ActiveWorkoutSession) error {
	ex, err := exerciseAt(s, u.Exercise)
	if err != nil {
		return err
	}
	if u.Set < 0 || u.Set >= len(ex.Sets) {
		return fmt.Errorf("%w: set %d out of range", ErrInvalidUpdate, u.Set)
	}
	if u.Reps != nil && *u.Reps < 0 {
		return fmt.Errorf("%w: negative reps", ErrInvalidUpdate)
	}
	if u.Weight != nil && *u.Weight < 0 {
		return fmt.Errorf("%w: negative weight", ErrInvalidUpdate)
	}
	set := &ex.Sets[u.Set]
	setIf(&set.Reps, u.Reps)
	setIf(&set.Weight, u.Weight)
	setIf(&set.Completed, u.Completed)
	return nil
}

func (u AddSet) apply(s *domain.ActiveWorkoutSession) error {
	ex, err := exerciseAt(s, u.Exercise)
	if err != nil {
		return err
	}
	if len(ex.Sets) >= domain.MaxSetCount {
		return fmt.Errorf("%w: at most %d sets per exercise", ErrInvalidUpdate, domain.MaxSetCount)
	}
	next := domain.WorkoutSet{Reps: ex.TargetReps}
	if n := len(ex.Sets); n > 0 {
		next = ex.Sets[n-1]
		next.Completed = false
	}
	ex.Sets = append(ex.Sets, next)
	return nil
}

func (u RemoveSet) apply(s *domain.ActiveWorkoutSession) error {
	ex, err := exerciseAt(s, u.Exercise)
	if err != nil {
		return err
	}
	if u.Set < 0 || u.Set >= len(ex.Sets) {
		return fmt.Errorf("%w: set %d out of range", ErrInvalidUpdate, u.Set)
	}
	ex.Sets = append(ex.Sets[:u.Set], ex.Sets[u.Set+1:]...)
	return nil
}

func (u AddExercise) apply(s *domain.ActiveWorkoutSession) error {
	if u.Exercise.Name == "" {
		return fmt.Errorf("%w: exercise name is required", ErrInvalidUpdate)
	}
	if err := u.Exercise.Sets.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	s.Exercises = append(s.Exercises, newSessionExercise(u.Exercise))
	return nil
}

func (u RemoveExercise) apply(s *domain.ActiveWorkoutSession) error {
	if _, err := exerciseAt(s, u.Exercise); err != nil {
		return err
	}
	s.Exercises = append(s.Exercises[:u.Exercise], s.Exercises[u.Exercise+1:]...)
	return nil
}

func (u SetSessionNotes) apply(s *domain.ActiveWorkoutSession) error {
	s.Notes = u.Notes
	return nil
}

func (CancelSession) apply(*domain.ActiveWorkoutSession) error {
	return nil
}
