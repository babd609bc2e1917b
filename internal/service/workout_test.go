package service

import (
	"alcyxob/gymhub/internal/domain"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func stringPtr(v string) *string { return &v }

var pushPullPlan = domain.WorkoutPlan{
	ID:   "plan-ppl",
	Name: "PPL",
	Schedule: []domain.ScheduleDay{
		{Focus: "Push", Exercises: []domain.PlanExercise{{Name: "Bench", Sets: domain.SetSpec{Count: 3}, Reps: 8}}},
		{Focus: "Pull", Exercises: []domain.PlanExercise{{Name: "Row", Sets: domain.SetSpec{Count: 4}, Reps: 10}}},
	},
}

func TestStartWorkoutFromSchedule(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	session, err := w.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned)
	if err != nil {
		t.Fatalf("StartWorkout() error = %v", err)
	}
	if !strings.Contains(session.RoutineName, "Push") {
		t.Errorf("RoutineName = %q, want it to contain Push", session.RoutineName)
	}
	if session.Source != domain.SourceAssigned {
		t.Errorf("Source = %q, want ASSIGNED", session.Source)
	}
	if len(session.Exercises) != 1 || session.Exercises[0].Name != "Bench" {
		t.Fatalf("Exercises = %+v, want Bench only", session.Exercises)
	}
	sets := session.Exercises[0].Sets
	if len(sets) != 3 {
		t.Fatalf("len(sets) = %d, want 3", len(sets))
	}
	for i, s := range sets {
		if s.Completed || s.Reps != 8 {
			t.Errorf("set %d = %+v, want 8 reps not completed", i, s)
		}
	}

	active := w.Snapshot().ActiveSession
	if active == nil || active.SessionID != session.SessionID {
		t.Errorf("snapshot ActiveSession = %+v, want %s", active, session.SessionID)
	}
}

func TestStartWorkoutRotatesScheduleByAttendance(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	if err := w.MarkAttendance(ctx, "M1", testNow.AddDate(0, 0, -1), domain.AttendancePresent); err != nil {
		t.Fatal(err)
	}
	session, err := w.StartWorkout(ctx, pushPullPlan, "")
	if err != nil {
		t.Fatal(err)
	}
	if session.DayIndex != 1 || !strings.Contains(session.RoutineName, "Pull") {
		t.Errorf("day = %d %q, want 1 Pull", session.DayIndex, session.RoutineName)
	}
	if got := len(session.Exercises[0].Sets); got != 4 {
		t.Errorf("len(sets) = %d, want 4", got)
	}
}

func TestStartWorkoutInfersSource(t *testing.T) {
	tests := []struct {
		name     string
		assigned string
		want     domain.SessionSource
	}{
		{"assigned program", "plan-ppl", domain.SourceAssigned},
		{"other program", "plan-other", domain.SourcePersonal},
		{"nothing assigned", "", domain.SourcePersonal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, repo, _ := newTestService(t)
			seedUsers(t, repo, domain.User{ID: "M1", GymID: "G1", Role: domain.RoleMember, AssignedProgram: tt.assigned})
			w := openAs(t, svc, memberM1)

			session, err := w.StartWorkout(ctx, pushPullPlan, "")
			if err != nil {
				t.Fatal(err)
			}
			if session.Source != tt.want {
				t.Errorf("Source = %q, want %q", session.Source, tt.want)
			}
		})
	}
}

func TestStartWorkoutNormalizesSets(t *testing.T) {
	tests := []struct {
		name     string
		exercise domain.PlanExercise
		want     []domain.WorkoutSet
	}{
		{
			name:     "explicit list",
			exercise: domain.PlanExercise{Name: "Squat", Sets: domain.SetSpec{List: []domain.WorkoutSet{{Reps: 5, Weight: 100}, {Reps: 3, Weight: 110}}}},
			want:     []domain.WorkoutSet{{Reps: 5, Weight: 100}, {Reps: 3, Weight: 110}},
		},
		{
			name:     "count",
			exercise: domain.PlanExercise{Name: "Curl", Sets: domain.SetSpec{Count: 2}, Reps: 12, Weight: 15},
			want:     []domain.WorkoutSet{{Reps: 12, Weight: 15}, {Reps: 12, Weight: 15}},
		},
		{
			name:     "missing count defaults",
			exercise: domain.PlanExercise{Name: "Dip", Reps: 10},
			want:     []domain.WorkoutSet{{Reps: 10}, {Reps: 10}, {Reps: 10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, repo, _ := newTestService(t)
			seedTwoGyms(t, repo)
			w := openAs(t, svc, memberM1)

			plan := domain.WorkoutPlan{Name: "Custom", Exercises: []domain.PlanExercise{tt.exercise}}
			session, err := w.StartWorkout(ctx, plan, domain.SourcePersonal)
			if err != nil {
				t.Fatal(err)
			}
			got := session.Exercises[0].Sets
			if len(got) != len(tt.want) {
				t.Fatalf("sets = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("set %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSingleActiveSession(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	first, err := w.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.StartWorkout(ctx, pushPullPlan, domain.SourcePersonal); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second StartWorkout() error = %v, want ErrSessionActive", err)
	}
	if got := w.Snapshot().ActiveSession; got == nil || got.SessionID != first.SessionID {
		t.Errorf("active session changed to %+v", got)
	}
}

func TestCancelActiveWorkout(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	if _, err := w.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned); err != nil {
		t.Fatal(err)
	}
	if _, err := w.UpdateActiveWorkout(ctx, nil); err != nil {
		t.Fatalf("UpdateActiveWorkout(nil) error = %v", err)
	}
	snap := w.Snapshot()
	if snap.ActiveSession != nil {
		t.Error("session still active after cancel")
	}
	if len(snap.WorkoutHistory) != 0 {
		t.Errorf("cancel wrote %d records", len(snap.WorkoutHistory))
	}
	if err := w.CancelActiveWorkout(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("second cancel error = %v, want ErrNoActiveSession", err)
	}
	if _, err := w.FinishWorkout(ctx, FinishSummary{}); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("finish without session error = %v, want ErrNoActiveSession", err)
	}
}

func TestUpdateActiveWorkout(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	if _, err := w.UpdateActiveWorkout(ctx, SetSessionNotes{Notes: "x"}); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("update without session error = %v, want ErrNoActiveSession", err)
	}
	if _, err := w.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		upd     SessionUpdate
		wantErr error
		check   func(t *testing.T, s *domain.ActiveWorkoutSession)
	}{
		{
			name: "update set",
			upd:  UpdateSet{Exercise: 0, Set: 1, Weight: floatPtr(60), Completed: boolPtr(true)},
			check: func(t *testing.T, s *domain.ActiveWorkoutSession) {
				if got := s.Exercises[0].Sets[1]; got.Weight != 60 || !got.Completed || got.Reps != 8 {
					t.Errorf("set = %+v", got)
				}
			},
		},
		{
			name: "add set copies last",
			upd:  AddSet{Exercise: 0},
			check: func(t *testing.T, s *domain.ActiveWorkoutSession) {
				if n := len(s.Exercises[0].Sets); n != 4 {
					t.Errorf("len(sets) = %d, want 4", n)
				}
			},
		},
		{
			name: "remove set",
			upd:  RemoveSet{Exercise: 0, Set: 3},
			check: func(t *testing.T, s *domain.ActiveWorkoutSession) {
				if n := len(s.Exercises[0].Sets); n != 3 {
					t.Errorf("len(sets) = %d, want 3", n)
				}
			},
		},
		{
			name: "add exercise",
			upd:  AddExercise{Exercise: domain.PlanExercise{Name: "Fly", Reps: 12}},
			check: func(t *testing.T, s *domain.ActiveWorkoutSession) {
				if len(s.Exercises) != 2 || len(s.Exercises[1].Sets) != domain.DefaultSetCount {
					t.Errorf("exercises = %+v", s.Exercises)
				}
			},
		},
		{
			name: "remove exercise",
			upd:  RemoveExercise{Exercise: 1},
			check: func(t *testing.T, s *domain.ActiveWorkoutSession) {
				if len(s.Exercises) != 1 {
					t.Errorf("len(exercises) = %d, want 1", len(s.Exercises))
				}
			},
		},
		{
			name: "notes",
			upd:  SetSessionNotes{Notes: "felt strong"},
			check: func(t *testing.T, s *domain.ActiveWorkoutSession) {
				if s.Notes != "felt strong" {
					t.Errorf("notes = %q", s.Notes)
				}
			},
		},
		{name: "set out of range", upd: UpdateSet{Exercise: 0, Set: 9, Reps: intPtr(1)}, wantErr: ErrInvalidUpdate},
		{name: "exercise out of range", upd: AddSet{Exercise: 5}, wantErr: ErrInvalidUpdate},
		{name: "negative weight", upd: UpdateSet{Exercise: 0, Set: 0, Weight: floatPtr(-1)}, wantErr: ErrInvalidUpdate},
		{name: "unnamed exercise", upd: AddExercise{}, wantErr: ErrInvalidUpdate},
		{
			name:    "oversized exercise",
			upd:     AddExercise{Exercise: domain.PlanExercise{Name: "Fly", Sets: domain.SetSpec{Count: 2_000_000}}},
			wantErr: ErrInvalidUpdate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := w.Snapshot().ActiveSession
			got, err := w.UpdateActiveWorkout(ctx, tt.upd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if w.Snapshot().ActiveSession != before {
					t.Error("snapshot republished after a rejected update")
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			tt.check(t, got)
			tt.check(t, w.Snapshot().ActiveSession)
		})
	}
}

func TestFinishWorkout(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	if _, err := w.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		upd := UpdateSet{Exercise: 0, Set: i, Reps: intPtr(8), Weight: floatPtr(50), Completed: boolPtr(true)}
		if _, err := w.UpdateActiveWorkout(ctx, upd); err != nil {
			t.Fatal(err)
		}
	}
	clock.Advance(45 * time.Minute)

	rec, err := w.FinishWorkout(ctx, FinishSummary{Notes: "good"})
	if err != nil {
		t.Fatalf("FinishWorkout() error = %v", err)
	}
	if len(rec.CompletedExercises) != 1 {
		t.Fatalf("CompletedExercises = %+v, want 1", rec.CompletedExercises)
	}
	ex := rec.CompletedExercises[0]
	if ex.MaxWeight != 50 || ex.AvgReps != 8 || ex.Volume != 1200 {
		t.Errorf("summary = %+v, want max 50 avg 8 volume 1200", ex)
	}
	if rec.TotalVolume != 1200 || rec.Duration != 2700 || rec.Date != "2024-01-10" {
		t.Errorf("record = volume %v duration %d date %s", rec.TotalVolume, rec.Duration, rec.Date)
	}

	snap := w.Snapshot()
	if snap.ActiveSession != nil {
		t.Error("session still active after finish")
	}
	if len(snap.WorkoutHistory) != 1 || snap.WorkoutHistory[0].RecordID != rec.RecordID {
		t.Errorf("history = %+v", snap.WorkoutHistory)
	}
	want := domain.StreakRecord{Current: 1, Best: 1, LastDate: "2024-01-10"}
	if got := snap.Streaks["M1"]; got != want {
		t.Errorf("streak = %+v, want %+v", got, want)
	}
	if got := snap.Attendance["M1"]; len(got) != 1 || got[0].Status != domain.AttendancePresent {
		t.Errorf("attendance = %+v", got)
	}
	points := snap.Progress["M1"]["Bench"]
	if len(points) != 1 || points[0].MaxWeight != 50 || points[0].AvgReps != 8 {
		t.Errorf("progress = %+v", points)
	}
}

func TestFinishWorkoutWithoutCompletedSets(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	if _, err := w.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned); err != nil {
		t.Fatal(err)
	}
	rec, err := w.FinishWorkout(ctx, FinishSummary{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.CompletedExercises) != 0 || rec.TotalVolume != 0 {
		t.Errorf("record = %+v, want no exercises", rec)
	}
	snap := w.Snapshot()
	if len(snap.WorkoutHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(snap.WorkoutHistory))
	}
	if len(snap.Attendance["M1"]) != 1 {
		t.Error("empty session did not count as attendance")
	}
	if _, ok := snap.Progress["M1"]; ok {
		t.Error("empty session wrote progress")
	}
}

func TestConsecutiveWorkoutsExtendStreak(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	for day := 0; day < 3; day++ {
		if _, err := w.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned); err != nil {
			t.Fatal(err)
		}
		if _, err := w.FinishWorkout(ctx, FinishSummary{}); err != nil {
			t.Fatal(err)
		}
		clock.Advance(24 * time.Hour)
	}
	want := domain.StreakRecord{Current: 3, Best: 3, LastDate: "2024-01-12"}
	if got := w.Snapshot().Streaks["M1"]; got != want {
		t.Errorf("streak = %+v, want %+v", got, want)
	}
}

func TestWorkoutRecordCorrection(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	member := openAs(t, svc, memberM1)

	if _, err := member.StartWorkout(ctx, pushPullPlan, domain.SourceAssigned); err != nil {
		t.Fatal(err)
	}
	rec, err := member.FinishWorkout(ctx, FinishSummary{Notes: "first"})
	if err != nil {
		t.Fatal(err)
	}

	// Unrelated mutations leave the record as written.
	if _, err := member.StartWorkout(ctx, pushPullPlan, domain.SourcePersonal); err != nil {
		t.Fatal(err)
	}
	if err := member.CancelActiveWorkout(ctx); err != nil {
		t.Fatal(err)
	}
	if got := member.Snapshot().WorkoutHistory[0]; got.Notes != "first" || got.CorrectedAt != nil {
		t.Errorf("record changed by unrelated writes: %+v", got)
	}

	correction := RecordCorrection{
		Notes: stringPtr("corrected"),
		Exercises: []domain.CompletedExercise{{
			Name: "Bench",
			Sets: []domain.WorkoutSet{{Reps: 10, Weight: 40, Completed: true}, {Reps: 6, Weight: 60, Completed: true}},
		}},
	}
	if _, err := member.CorrectWorkoutRecord(ctx, rec.RecordID, correction); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member correction error = %v, want ErrForbidden", err)
	}

	master := openAs(t, svc, masterG1)
	got, err := master.CorrectWorkoutRecord(ctx, rec.RecordID, correction)
	if err != nil {
		t.Fatalf("master correction error = %v", err)
	}
	if got.Notes != "corrected" || got.CorrectedBy != "MASTER1" || got.CorrectedAt == nil {
		t.Errorf("corrected record = %+v", got)
	}
	ex := got.CompletedExercises[0]
	if ex.MaxWeight != 60 || ex.AvgReps != 8 || got.TotalVolume != 760 {
		t.Errorf("recomputed = max %v avg %v total %v", ex.MaxWeight, ex.AvgReps, got.TotalVolume)
	}

	other := openAs(t, svc, domain.Identity{UserID: "MASTER2", GymID: "G2", Role: domain.RoleMaster})
	if got, err := other.CorrectWorkoutRecord(ctx, rec.RecordID, correction); err != nil || got != nil {
		t.Errorf("cross-tenant correction = %+v, %v; want nil, nil", got, err)
	}
}

func TestSetCountLimits(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	member := openAs(t, svc, memberM1)
	master := openAs(t, svc, masterG1)

	huge := domain.WorkoutPlan{
		Name:      "Volume madness",
		Exercises: []domain.PlanExercise{{Name: "Squat", Sets: domain.SetSpec{Count: 2_000_000}}},
	}
	if _, err := member.StartWorkout(ctx, huge, domain.SourcePersonal); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("StartWorkout(huge) error = %v, want ErrInvalidInput", err)
	}
	if member.Snapshot().ActiveSession != nil {
		t.Error("session started from an oversized plan")
	}
	if _, err := master.SaveWorkoutPlan(ctx, huge); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SaveWorkoutPlan(huge) error = %v, want ErrInvalidInput", err)
	}
	if _, err := master.SaveProgram(ctx, domain.Program{Name: "Huge", Exercises: huge.Exercises}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SaveProgram(huge) error = %v, want ErrInvalidInput", err)
	}

	full := domain.WorkoutPlan{
		Name:      "At the limit",
		Exercises: []domain.PlanExercise{{Name: "Squat", Sets: domain.SetSpec{Count: domain.MaxSetCount}}},
	}
	if _, err := member.StartWorkout(ctx, full, domain.SourcePersonal); err != nil {
		t.Fatalf("StartWorkout(full) error = %v", err)
	}
	if _, err := member.UpdateActiveWorkout(ctx, AddSet{Exercise: 0}); !errors.Is(err, ErrInvalidUpdate) {
		t.Errorf("AddSet beyond the limit error = %v, want ErrInvalidUpdate", err)
	}
	if got := len(member.Snapshot().ActiveSession.Exercises[0].Sets); got != domain.MaxSetCount {
		t.Errorf("sets = %d, want %d", got, domain.MaxSetCount)
	}
}
