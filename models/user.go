package models

import "time"

// User roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

type User struct {
	ID              string    `bson:"_id" json:"id"`
	Username        string    `bson:"username" json:"username" binding:"required,min=3,max=50"`
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash    string    `bson:"password_hash" json:"-"`
	Role            string    `bson:"role" json:"role"`
	DailyCheckLimit int       `bson:"daily_check_limit" json:"daily_check_limit"`
	ChecksUsedToday int       `bson:"checks_used_today" json:"checks_used_today"`
	LastResetDate   time.Time `bson:"last_reset_date" json:"last_reset_date"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// QuotaExempt reports whether the user's role bypasses the daily
// check quota entirely.
func (u *User) QuotaExempt() bool {
	return u.Role == RoleAdmin
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID                   string `json:"id"`
	Username             string `json:"username"`
	Name                 string `json:"name"`
	Role                 string `json:"role"`
	RemainingChecksToday int    `json:"remaining_checks_today"`
	DailyCheckLimit      int    `json:"daily_check_limit"`
}
