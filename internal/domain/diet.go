package domain

import "time"

// DietPlan belongs to a member. CreatedBy differs from the member id when a trainer assigned it.
type DietPlan struct {
	ID        string    `json:"id"`
	GymID     string    `json:"gymId"`
	Name      string    `json:"name"`
	Goal      string    `json:"goal,omitempty"`
	Meals     []Meal    `json:"meals"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Meal struct {
	Name     string   `json:"name"`
	Time     string   `json:"time,omitempty"`
	Items    []string `json:"items,omitempty"`
	Calories int      `json:"calories,omitempty"`
}
