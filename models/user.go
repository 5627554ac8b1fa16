package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleJudge UserRole = "JUDGE"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
