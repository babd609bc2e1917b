package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// RecordCorrection replaces the given parts of a WorkoutRecord.
type RecordCorrection struct {
	Duration  *int64                     `json:"duration"`
	Notes     *string                    `json:"notes"`
	Exercises []domain.CompletedExercise `json:"completedExercises"`
}

// CorrectWorkoutRecord is the only path that changes an existing record.
// It is reserved for the gym's MASTER and stamps who corrected it and when.
func (w *Workspace) CorrectWorkoutRecord(ctx context.Context, recordID string, c RecordCorrection) (*domain.WorkoutRecord, error) {
	if c.Duration != nil && *c.Duration < 0 {
		return nil, w.svc.invalid(errors.New("duration must not be negative"))
	}
	var corrected *domain.WorkoutRecord
	err := w.mutate(ctx, "correct_workout_record", func(id domain.Identity) error {
		if id.Role != domain.RoleMaster {
			return fmt.Errorf("correct workout record: %w", ErrForbidden)
		}
		err := w.svc.repo.WorkoutHistory.Update(ctx, func(list []domain.WorkoutRecord) ([]domain.WorkoutRecord, error) {
			for i := range list {
				rec := &list[i]
				if rec.RecordID != recordID || rec.GymID != id.GymID {
					continue
				}
				setIf(&rec.Duration, c.Duration)
				setIf(&rec.Notes, c.Notes)
				if c.Exercises != nil {
					rec.CompletedExercises = completedExercises(c.Exercises)
					rec.TotalVolume = totalVolume(rec.CompletedExercises)
				}
				now := w.svc.now()
				rec.CorrectedAt = &now
				rec.CorrectedBy = id.UserID
				cp := *rec
				corrected = &cp
				w.svc.log.Info("Workout record corrected",
					zap.String("record_id", recordID), zap.String("by", id.UserID))
				return list, nil
			}
			return nil, repository.ErrUnchanged
		})
		if err != nil || corrected == nil || c.Exercises == nil {
			return err
		}
		return w.svc.repo.Progress.UpdateKey(ctx, corrected.UserID, func(p domain.ExerciseProgress, _ bool) (domain.ExerciseProgress, bool, error) {
			next := p.WithoutRecord(corrected.RecordID)
			for _, ex := range corrected.CompletedExercises {
				next[ex.Name] = insertByDate(next[ex.Name], progressPoint(*corrected, ex))
			}
			if len(next) == 0 {
				return next, false, nil
			}
			return next, true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return corrected, nil
}

// completedExercises summarizes the completed sets of each exercise,
// skipping exercises with none.
func completedExercises(in []domain.CompletedExercise) []domain.CompletedExercise {
	out := make([]domain.CompletedExercise, 0, len(in))
	for _, ex := range in {
		var done []domain.WorkoutSet
		for _, set := range ex.Sets {
			if set.Completed {
				done = append(done, set)
			}
		}
		if len(done) > 0 {
			out = append(out, summarizeExercise(ex.Name, done))
		}
	}
	return out
}

// insertByDate keeps points ordered oldest first.
func insertByDate(points []domain.ProgressPoint, pt domain.ProgressPoint) []domain.ProgressPoint {
	i := sort.Search(len(points), func(i int) bool { return points[i].Date > pt.Date })
	points = append(points, domain.ProgressPoint{})
	copy(points[i+1:], points[i:])
	points[i] = pt
	return points
}
