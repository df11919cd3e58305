package model

import (
	"time"

	"lodge/shared/constant"
	"lodge/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldLevel     = "level"
	FieldFullName  = "full_name"
	FieldLastLogin = "last_login"
	FieldActive    = "active"
)

// User is a staff account allowed to operate the back office.
type User struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Level     string     `db:"level"`
	FullName  *string    `db:"full_name"`
	LastLogin *time.Time `db:"last_login"`
	Active    bool       `db:"active"`
	model.Metadata
}

// PublicColumns lists every column except the password hash.
func PublicColumns() []string {
	return []string{
		FieldID, FieldEmail, FieldLevel, FieldFullName, FieldLastLogin, FieldActive,
		constant.FieldCreatedAt, constant.FieldModifiedAt, constant.FieldCreatedBy, constant.FieldModifiedBy,
	}
}

func (u User) IsActiveAdmin() bool {
	return u.Active && u.Level == constant.RoleAdmin
}
