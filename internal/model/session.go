package model

import "time"

type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
	StartedAt    time.Time
	Timeout      time.Duration
}

// LoginResponse is the body of a successful POST /api/auth/login.
type LoginResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}
