package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a row in the users table. PasswordHash is nil for accounts
// created through Google login that never set a password.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	Img          *string    `db:"img" json:"img"`
	Role         string     `db:"role" json:"role"`
	Verified     bool       `db:"verified" json:"verified"`
	Birthday     *time.Time `db:"birthday" json:"birthday"`
	MemberSince  time.Time  `db:"member_since" json:"memberSince"`
}
