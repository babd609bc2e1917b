package domain

import "time"

// SessionSource tags where an active session came from.
type SessionSource string

const (
	SourceAssigned SessionSource = "ASSIGNED"
	SourcePersonal SessionSource = "PERSONAL"
)

func (s SessionSource) Valid() bool {
	return s == SourceAssigned || s == SourcePersonal
}

// WorkoutSet is a single set, either planned or performed.
type WorkoutSet struct {
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	Completed bool    `json:"completed"`
}

// SessionExercise is an exercise inside an in-progress session.
type SessionExercise struct {
	Name       string       `json:"name"`
	TargetReps int          `json:"targetReps,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	Sets       []WorkoutSet `json:"sets"`
}

// ActiveWorkoutSession is the in-progress workout. At most one exists per user.
type ActiveWorkoutSession struct {
	SessionID   string            `json:"sessionId"`
	UserID      string            `json:"userId"`
	GymID       string            `json:"gymId"`
	RoutineID   string            `json:"routineId,omitempty"`
	RoutineCode string            `json:"routineCode,omitempty"`
	RoutineName string            `json:"routineName"`
	DayIndex    int               `json:"dayIndex"`
	Source      SessionSource     `json:"source"`
	StartTime   time.Time         `json:"startTime"`
	Notes       string            `json:"notes,omitempty"`
	Exercises   []SessionExercise `json:"exercises"`
}

// CompletedExercise is an exercise as recorded in history: only its completed sets.
type CompletedExercise struct {
	Name      string       `json:"name"`
	Sets      []WorkoutSet `json:"sets"`
	MaxWeight float64      `json:"maxWeight"`
	AvgReps   float64      `json:"avgReps"`
	Volume    float64      `json:"volume"`
}

// WorkoutRecord is an append-only history entry written when a session finishes.
type WorkoutRecord struct {
	RecordID           string              `json:"recordId"`
	UserID             string              `json:"userId"`
	GymID              string              `json:"gymId"`
	SessionID          string              `json:"sessionId,omitempty"`
	RoutineName        string              `json:"routineName,omitempty"`
	Source             SessionSource       `json:"source,omitempty"`
	Date               string              `json:"date"`
	StartTime          time.Time           `json:"startTime"`
	EndTime            time.Time           `json:"endTime"`
	Duration           int64               `json:"duration"` // seconds
	TotalVolume        float64             `json:"totalVolume"`
	Notes              string              `json:"notes,omitempty"`
	CompletedExercises []CompletedExercise `json:"completedExercises"`
	CorrectedAt        *time.Time          `json:"correctedAt,omitempty"`
	CorrectedBy        string              `json:"correctedBy,omitempty"`
}

// ProgressPoint is one session's summary for one exercise.
type ProgressPoint struct {
	Date      string  `json:"date"`
	RecordID  string  `json:"recordId"`
	MaxWeight float64 `json:"maxWeight"`
	AvgReps   float64 `json:"avgReps"`
}

// ExerciseProgress maps exercise name to its progress points, oldest first.
type ExerciseProgress map[string][]ProgressPoint

// HasRecord reports whether any point came from recordID.
func (p ExerciseProgress) HasRecord(recordID string) bool {
	for _, points := range p {
		for _, pt := range points {
			if pt.RecordID == recordID {
				return true
			}
		}
	}
	return false
}

// WithoutRecord drops every point that came from recordID, removing
// exercises left without points.
func (p ExerciseProgress) WithoutRecord(recordID string) ExerciseProgress {
	out := make(ExerciseProgress, len(p))
	for name, points := range p {
		kept := make([]ProgressPoint, 0, len(points))
		for _, pt := range points {
			if pt.RecordID != recordID {
				kept = append(kept, pt)
			}
		}
		if len(kept) > 0 {
			out[name] = kept
		}
	}
	return out
}
