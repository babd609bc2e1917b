package domain

import "time"

// Payment is a membership payment. It drives the member's expiry.
type Payment struct {
	ID         string    `json:"id"`
	GymID      string    `json:"gymId"`
	MemberID   string    `json:"memberId"`
	MemberName string    `json:"memberName,omitempty"`
	Amount     float64   `json:"amount"`
	Plan       string    `json:"plan"`
	Mode       string    `json:"mode"`
	Date       time.Time `json:"date"`
	ExpiryDate time.Time `json:"expiryDate"`
}

// MembershipPlan is a sellable plan. An empty GymID marks a global template.
type MembershipPlan struct {
	ID             string   `json:"id"`
	GymID          string   `json:"gymId,omitempty"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	DurationMonths int      `json:"durationMonths"`
	Features       []string `json:"features,omitempty"`
}

func (p *MembershipPlan) IsGlobal() bool {
	return p.GymID == ""
}
