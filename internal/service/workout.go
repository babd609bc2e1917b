package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session outcomes reported to metrics.
const (
	sessionStarted   = "started"
	sessionFinished  = "finished"
	sessionCancelled = "cancelled"
)

// FinishSummary carries what the member adds when ending a session.
type FinishSummary struct {
	Notes string `json:"notes"`
}

// resolveExercises picks the exercises to run from plan. A flat exercise
// list wins; otherwise the schedule day is rotated by how many attendance
// entries the user already has.
func resolveExercises(plan domain.WorkoutPlan, attendanceCount int) ([]domain.PlanExercise, string, int) {
	if len(plan.Exercises) > 0 || len(plan.Schedule) == 0 {
		return plan.Exercises, plan.Name, 0
	}
	idx := attendanceCount % len(plan.Schedule)
	day := plan.Schedule[idx]
	name := day.Focus
	if plan.Name != "" && day.Focus != "" {
		name = plan.Name + " - " + day.Focus
	} else if name == "" {
		name = plan.Name
	}
	return day.Exercises, name, idx
}

func newSessionExercise(e domain.PlanExercise) domain.SessionExercise {
	return domain.SessionExercise{
		Name:       e.Name,
		TargetReps: e.Reps,
		Notes:      e.Notes,
		Sets:       e.Normalize(),
	}
}

// StartWorkout opens a session for the caller from plan. source may be empty,
// in which case it is ASSIGNED when plan is the caller's assigned program and
// PERSONAL otherwise.
func (w *Workspace) StartWorkout(ctx context.Context, plan domain.WorkoutPlan, source domain.SessionSource) (*domain.ActiveWorkoutSession, error) {
	if source != "" && !source.Valid() {
		return nil, w.svc.invalid(errors.New("source must be ASSIGNED or PERSONAL"))
	}
	if err := plan.Validate(); err != nil {
		return nil, w.svc.invalid(err)
	}
	var started *domain.ActiveWorkoutSession
	err := w.mutate(ctx, "start_workout", func(id domain.Identity) error {
		attendance, _, err := w.svc.repo.Attendance.Get(ctx, id.UserID)
		if err != nil {
			return err
		}
		if source == "" {
			source = domain.SourcePersonal
			if u, err := w.svc.tenantUser(ctx, id.GymID, id.UserID); err == nil && u != nil && plan.ID != "" && u.AssignedProgram == plan.ID {
				source = domain.SourceAssigned
			}
		}

		templates, name, dayIndex := resolveExercises(plan, len(attendance))
		exercises := make([]domain.SessionExercise, 0, len(templates))
		for _, e := range templates {
			exercises = append(exercises, newSessionExercise(e))
		}
		session := domain.ActiveWorkoutSession{
			SessionID:   uuid.NewString(),
			UserID:      id.UserID,
			GymID:       id.GymID,
			RoutineID:   plan.ID,
			RoutineCode: plan.Code,
			RoutineName: name,
			DayIndex:    dayIndex,
			Source:      source,
			StartTime:   w.svc.now(),
			Exercises:   exercises,
		}

		err = w.svc.repo.ActiveWorkouts.UpdateKey(ctx, id.UserID, func(cur domain.ActiveWorkoutSession, ok bool) (domain.ActiveWorkoutSession, bool, error) {
			// A session left behind in another gym is not visible here and is replaced.
			if ok && cur.GymID == id.GymID {
				return cur, true, ErrSessionActive
			}
			return session, true, nil
		})
		if err != nil {
			return err
		}
		started = &session
		w.svc.metrics.Session(sessionStarted)
		w.svc.log.Info("Workout started",
			zap.String("user_id", id.UserID), zap.String("session_id", session.SessionID),
			zap.String("routine", name), zap.String("source", string(source)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// activeSession loads the caller's session as the refresh pipeline would see it.
func (s *GymService) activeSession(ctx context.Context, id domain.Identity) (*domain.ActiveWorkoutSession, error) {
	cur, ok, err := s.repo.ActiveWorkouts.Get(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if !ok || cur.UserID != id.UserID || cur.GymID != id.GymID {
		return nil, nil
	}
	return &cur, nil
}

// UpdateActiveWorkout applies upd to the caller's session. A nil update or
// CancelSession cancels the session.
func (w *Workspace) UpdateActiveWorkout(ctx context.Context, upd SessionUpdate) (*domain.ActiveWorkoutSession, error) {
	if upd == nil {
		return nil, w.CancelActiveWorkout(ctx)
	}
	if _, ok := upd.(CancelSession); ok {
		return nil, w.CancelActiveWorkout(ctx)
	}
	var updated *domain.ActiveWorkoutSession
	err := w.mutate(ctx, "update_workout", func(id domain.Identity) error {
		return w.svc.repo.ActiveWorkouts.UpdateKey(ctx, id.UserID, func(cur domain.ActiveWorkoutSession, ok bool) (domain.ActiveWorkoutSession, bool, error) {
			if !ok || cur.UserID != id.UserID || cur.GymID != id.GymID {
				return cur, ok, ErrNoActiveSession
			}
			if err := upd.apply(&cur); err != nil {
				return cur, true, err
			}
			cp := cur
			updated = &cp
			return cur, true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// buildRecord keeps only exercises with at least one completed set, and only
// their completed sets.
func buildRecord(session domain.ActiveWorkoutSession, summary FinishSummary, end time.Time) domain.WorkoutRecord {
	duration := end.Sub(session.StartTime)
	if duration < 0 {
		duration = 0
	}
	rec := domain.WorkoutRecord{
		RecordID:           uuid.NewString(),
		UserID:             session.UserID,
		GymID:              session.GymID,
		SessionID:          session.SessionID,
		RoutineName:        session.RoutineName,
		Source:             session.Source,
		Date:               domain.DateKey(end),
		StartTime:          session.StartTime,
		EndTime:            end,
		Duration:           int64(duration / time.Second),
		Notes:              summary.Notes,
		CompletedExercises: []domain.CompletedExercise{},
	}
	for _, ex := range session.Exercises {
		var done []domain.WorkoutSet
		for _, set := range ex.Sets {
			if set.Completed {
				done = append(done, set)
			}
		}
		if len(done) == 0 {
			continue
		}
		rec.CompletedExercises = append(rec.CompletedExercises, summarizeExercise(ex.Name, done))
	}
	rec.TotalVolume = totalVolume(rec.CompletedExercises)
	return rec
}

func summarizeExercise(name string, sets []domain.WorkoutSet) domain.CompletedExercise {
	ce := domain.CompletedExercise{Name: name, Sets: sets}
	reps := 0
	for _, s := range sets {
		ce.MaxWeight = math.Max(ce.MaxWeight, s.Weight)
		ce.Volume += s.Weight * float64(s.Reps)
		reps += s.Reps
	}
	if len(sets) > 0 {
		ce.AvgReps = float64(reps) / float64(len(sets))
	}
	return ce
}

func totalVolume(exercises []domain.CompletedExercise) float64 {
	total := 0.0
	for _, e := range exercises {
		total += e.Volume
	}
	return total
}

// FinishWorkout closes the caller's session: it appends a WorkoutRecord,
// folds each completed exercise into Progress, marks the day present, which
// recomputes the streak, and clears the session last. A session with no
// completed sets still produces a record and still counts as attendance.
//
// Every step is keyed by the session id, so finishing again after an
// ErrConflict completes the earlier attempt instead of adding a second record.
func (w *Workspace) FinishWorkout(ctx context.Context, summary FinishSummary) (*domain.WorkoutRecord, error) {
	var record *domain.WorkoutRecord
	err := w.mutate(ctx, "finish_workout", func(id domain.Identity) error {
		session, err := w.svc.activeSession(ctx, id)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrNoActiveSession
		}
		rec := buildRecord(*session, summary, w.svc.now())

		if err := w.svc.repo.WorkoutHistory.Update(ctx, func(list []domain.WorkoutRecord) ([]domain.WorkoutRecord, error) {
			for _, existing := range list {
				if existing.SessionID == session.SessionID {
					rec = existing
					return nil, repository.ErrUnchanged
				}
			}
			return append(list, rec), nil
		}); err != nil {
			return err
		}

		if len(rec.CompletedExercises) > 0 {
			if err := w.svc.repo.Progress.UpdateKey(ctx, id.UserID, func(p domain.ExerciseProgress, _ bool) (domain.ExerciseProgress, bool, error) {
				if p.HasRecord(rec.RecordID) {
					return p, true, repository.ErrUnchanged
				}
				if p == nil {
					p = domain.ExerciseProgress{}
				}
				for _, ex := range rec.CompletedExercises {
					p[ex.Name] = append(p[ex.Name], progressPoint(rec, ex))
				}
				return p, true, nil
			}); err != nil {
				return err
			}
		}

		if err := w.svc.recordAttendance(ctx, id.UserID, rec.Date, domain.AttendancePresent); err != nil {
			return err
		}

		if err := w.svc.repo.ActiveWorkouts.UpdateKey(ctx, id.UserID, func(cur domain.ActiveWorkoutSession, ok bool) (domain.ActiveWorkoutSession, bool, error) {
			if ok && cur.SessionID != session.SessionID {
				return cur, true, repository.ErrUnchanged
			}
			return cur, false, nil
		}); err != nil {
			return err
		}

		record = &rec
		w.svc.metrics.Session(sessionFinished)
		w.svc.log.Info("Workout finished",
			zap.String("user_id", id.UserID), zap.String("record_id", rec.RecordID),
			zap.Int("exercises", len(rec.CompletedExercises)), zap.Float64("volume", rec.TotalVolume))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func progressPoint(rec domain.WorkoutRecord, ex domain.CompletedExercise) domain.ProgressPoint {
	return domain.ProgressPoint{
		Date:      rec.Date,
		RecordID:  rec.RecordID,
		MaxWeight: ex.MaxWeight,
		AvgReps:   ex.AvgReps,
	}
}

// CancelActiveWorkout discards the caller's session without writing a record.
func (w *Workspace) CancelActiveWorkout(ctx context.Context) error {
	return w.mutate(ctx, "cancel_workout", func(id domain.Identity) error {
		err := w.svc.repo.ActiveWorkouts.UpdateKey(ctx, id.UserID, func(cur domain.ActiveWorkoutSession, ok bool) (domain.ActiveWorkoutSession, bool, error) {
			if !ok || cur.UserID != id.UserID || cur.GymID != id.GymID {
				return cur, ok, ErrNoActiveSession
			}
			return cur, false, nil
		})
		if err != nil {
			return err
		}
		w.svc.metrics.Session(sessionCancelled)
		return nil
	})
}
