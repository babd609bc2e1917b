package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPlanExerciseSetsDecoding(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantSets int
		wantReps int
	}{
		{"count", `{"name":"Bench","sets":4,"reps":8}`, 4, 8},
		{"quoted count", `{"name":"Bench","sets":"2","reps":8}`, 2, 8},
		{"missing", `{"name":"Bench","reps":8}`, DefaultSetCount, 8},
		{"null", `{"name":"Bench","sets":null,"reps":8}`, DefaultSetCount, 8},
		{"list", `{"name":"Bench","sets":[{"reps":5,"weight":60},{"reps":5,"weight":60}],"reps":8}`, 2, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e PlanExercise
			if err := json.Unmarshal([]byte(tt.raw), &e); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			sets := e.Normalize()
			if len(sets) != tt.wantSets {
				t.Fatalf("len(Normalize()) = %d, want %d", len(sets), tt.wantSets)
			}
			for i, s := range sets {
				if s.Reps != tt.wantReps || s.Completed {
					t.Errorf("set %d = %+v", i, s)
				}
			}
		})
	}
}

func TestSetSpecRejectsInvalidCounts(t *testing.T) {
	tooMany := `[` + strings.TrimSuffix(strings.Repeat(`{"reps":5},`, MaxSetCount+1), ",") + `]`
	tests := []struct {
		name string
		raw  string
	}{
		{"non-numeric", `{"sets":"three"}`},
		{"zero", `{"sets":0}`},
		{"quoted zero", `{"sets":"0"}`},
		{"negative", `{"sets":-2}`},
		{"huge", `{"sets":1000000000}`},
		{"above limit", `{"sets":51}`},
		{"list above limit", `{"sets":` + tooMany + `}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e PlanExercise
			if err := json.Unmarshal([]byte(tt.raw), &e); err == nil {
				t.Errorf("Unmarshal(%s) accepted sets = %+v", tt.raw, e.Sets)
			}
		})
	}
}

func TestWorkoutPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    WorkoutPlan
		wantErr bool
	}{
		{"missing count", WorkoutPlan{Exercises: []PlanExercise{{Name: "Squat"}}}, false},
		{"at limit", WorkoutPlan{Exercises: []PlanExercise{{Name: "Squat", Sets: SetSpec{Count: MaxSetCount}}}}, false},
		{"above limit", WorkoutPlan{Exercises: []PlanExercise{{Name: "Squat", Sets: SetSpec{Count: MaxSetCount + 1}}}}, true},
		{"negative", WorkoutPlan{Exercises: []PlanExercise{{Name: "Squat", Sets: SetSpec{Count: -1}}}}, true},
		{"scheduled day above limit", WorkoutPlan{Schedule: []ScheduleDay{
			{Focus: "Legs", Exercises: []PlanExercise{{Name: "Squat", Sets: SetSpec{Count: 2_000_000}}}},
		}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeCapsCount(t *testing.T) {
	e := PlanExercise{Name: "Squat", Sets: SetSpec{Count: 2_000_000}}
	if got := len(e.Normalize()); got != MaxSetCount {
		t.Errorf("len(Normalize()) = %d, want %d", got, MaxSetCount)
	}
}

func TestDateKey(t *testing.T) {
	late := time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)
	if got := DateKey(late); got != "2024-02-29" {
		t.Errorf("DateKey() = %q, want 2024-02-29", got)
	}
}
