package user

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"image,omitempty"`
	Role      string    `json:"role"`
	Coins     int64     `json:"coins"`
	CreatedAt time.Time `json:"createdAt"`
}
