package entities

import "time"

const (
	// MaxAuthLogs is how many auth events are retained, newest first out last
	MaxAuthLogs = 50
	// MaxUserSessions is how many sessions are retained
	MaxUserSessions = 100
	// MinSessionDuration filters out tab flicker
	MinSessionDuration = 5 * time.Second
)

// AuthAction is a login or logout
type AuthAction string

const (
	AuthActionLogin  AuthAction = "login"
	AuthActionLogout AuthAction = "logout"
)

// AuthLog records a login or logout
type AuthLog struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	UserName  string     `json:"user_name"`
	Phone     string     `json:"phone"`
	Role      Role       `json:"role"`
	Action    AuthAction `json:"action"`
	Location  string     `json:"location"`
	Timestamp time.Time  `json:"timestamp"`
}

// UserSession records one visible session of the client app
type UserSession struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int64     `json:"duration_seconds"`
}
