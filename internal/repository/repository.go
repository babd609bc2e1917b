package repository

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/store"
)

// Collection names as they appear in the store.
const (
	UsersCollection           = "users"
	GymsCollection            = "gyms"
	TrainersCollection        = "trainers"
	ProgramsCollection        = "programs"
	WorkoutPlansCollection    = "workoutPlans"
	ActiveWorkoutsCollection  = "activeWorkouts"
	WorkoutHistoryCollection  = "workoutHistory"
	ProgressCollection        = "progress"
	AttendanceCollection      = "attendance"
	StreaksCollection         = "streaks"
	PaymentsCollection        = "payments"
	MembershipPlansCollection = "membershipPlans"
	DietPlansCollection       = "dietPlans"
	NotificationsCollection   = "notifications"
	AnnouncementsCollection   = "announcements"
	ConversationsCollection   = "conversations"
)

// Repository groups every collection the gym data layer uses. Lists hold
// records carrying their own id; maps are keyed by a user id (or a
// conversation key for chat).
type Repository struct {
	Users           List[domain.User]
	Gyms            List[domain.Gym]
	Trainers        List[domain.Trainer]
	Programs        List[domain.Program]
	WorkoutPlans    List[domain.WorkoutPlan]
	WorkoutHistory  List[domain.WorkoutRecord]
	Payments        List[domain.Payment]
	MembershipPlans List[domain.MembershipPlan]
	Notifications   List[domain.Notification]
	Announcements   List[domain.Announcement]

	ActiveWorkouts Map[domain.ActiveWorkoutSession]
	Progress       Map[domain.ExerciseProgress]
	Attendance     Map[[]domain.AttendanceEntry]
	Streaks        Map[domain.StreakRecord]
	DietPlans      Map[[]domain.DietPlan]
	Conversations  Map[[]domain.ChatMessage]
}

// New wires every collection to s.
func New(s store.CollectionStore) *Repository {
	return &Repository{
		Users:           List[domain.User]{store: s, name: UsersCollection},
		Gyms:            List[domain.Gym]{store: s, name: GymsCollection},
		Trainers:        List[domain.Trainer]{store: s, name: TrainersCollection},
		Programs:        List[domain.Program]{store: s, name: ProgramsCollection},
		WorkoutPlans:    List[domain.WorkoutPlan]{store: s, name: WorkoutPlansCollection},
		WorkoutHistory:  List[domain.WorkoutRecord]{store: s, name: WorkoutHistoryCollection},
		Payments:        List[domain.Payment]{store: s, name: PaymentsCollection},
		MembershipPlans: List[domain.MembershipPlan]{store: s, name: MembershipPlansCollection},
		Notifications:   List[domain.Notification]{store: s, name: NotificationsCollection},
		Announcements:   List[domain.Announcement]{store: s, name: AnnouncementsCollection},

		ActiveWorkouts: Map[domain.ActiveWorkoutSession]{store: s, name: ActiveWorkoutsCollection},
		Progress:       Map[domain.ExerciseProgress]{store: s, name: ProgressCollection},
		Attendance:     Map[[]domain.AttendanceEntry]{store: s, name: AttendanceCollection},
		Streaks:        Map[domain.StreakRecord]{store: s, name: StreaksCollection},
		DietPlans:      Map[[]domain.DietPlan]{store: s, name: DietPlansCollection},
		Conversations:  Map[[]domain.ChatMessage]{store: s, name: ConversationsCollection},
	}
}
