package domain

import "time"

// Role type to distinguish between user roles
type Role string

const (
	RoleMaster  Role = "MASTER"
	RoleTrainer Role = "TRAINER"
	RoleMember  Role = "MEMBER"
)

// MasterTarget is the notification target addressing the gym owner rather than a user id.
const MasterTarget = "MASTER"

// Member status values written by the mutators.
const (
	MemberStatusPending  = "pending"
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

// User represents any account in a gym: the Master, a Trainer or a Member.
// Only Members carry Plan and ExpiryDate.
type User struct {
	ID              string       `json:"id"`
	GymID           string       `json:"gymId"`
	Role            Role         `json:"role"`
	Name            string       `json:"name"`
	Email           string       `json:"email,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	Status          string       `json:"status,omitempty"`
	Plan            string       `json:"plan,omitempty"`
	ExpiryDate      *time.Time   `json:"expiryDate,omitempty"`
	AssignedProgram string       `json:"assignedProgram,omitempty"`
	TrainerID       string       `json:"trainerId,omitempty"`
	JoinDate        time.Time    `json:"joinDate"`
	Settings        UserSettings `json:"settings"`
}

// UserSettings live on the user's own record; there is no separate collection.
type UserSettings struct {
	Theme                string `json:"theme,omitempty"`
	Units                string `json:"units,omitempty"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	WeeklyGoal           int    `json:"weeklyGoal,omitempty"`
}

func (u *User) IsMember() bool {
	return u.Role == RoleMember
}

// ValidMemberStatus reports whether s is a status a member may be given.
func ValidMemberStatus(s string) bool {
	switch s {
	case MemberStatusPending, MemberStatusActive, MemberStatusInactive:
		return true
	}
	return false
}

// Identity is the authenticated caller as supplied by the transport layer.
type Identity struct {
	UserID string `json:"id"`
	GymID  string `json:"gymId"`
	Role   Role   `json:"role"`
}

// Gym is a tenant. Its ID is the gymId every scoped record carries.
type Gym struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"ownerId,omitempty"`
}
