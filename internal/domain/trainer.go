package domain

import "time"

type TrainerStatus string

const (
	TrainerActive   TrainerStatus = "Active"
	TrainerInactive TrainerStatus = "Inactive"
	TrainerDeleted  TrainerStatus = "Deleted" // soft delete, record is retained
)

// Trainer is the staff record behind a TRAINER user. ID and Code are the same generated code.
type Trainer struct {
	ID             string        `json:"id"`
	GymID          string        `json:"gymId"`
	Name           string        `json:"name"`
	Code           string        `json:"code"`
	Email          string        `json:"email,omitempty"`
	Phone          string        `json:"phone,omitempty"`
	Specialization string        `json:"specialization,omitempty"`
	Status         TrainerStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}
