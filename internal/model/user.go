package model

import "time"

type User struct {
	ID                   string     `json:"id"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	GoogleID             *string    `json:"-"`
	RefreshToken         *string    `json:"-"`
	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Bookmark marks a main roadmap the user wants to come back to.
type Bookmark struct {
	RoadmapID string    `json:"roadmapId"`
	CreatedAt time.Time `json:"createdAt"`
}
