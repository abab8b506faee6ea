package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VIERNES-8020/domino-backend/pkg/enums"
)

// User is the canonical identity entity. Agents, admins, accounting staff,
// and the ARXIS manager all live in this table, distinguished by Role.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	FirstName     string         `gorm:"column:first_name;not null"`
	LastName      string         `gorm:"column:last_name;not null"`
	Phone         *string        `gorm:"column:phone"`
	Role          enums.UserRole `gorm:"column:role;type:text;not null;default:'agent'"`
	AvatarMediaID *uuid.UUID     `gorm:"column:avatar_media_id;type:uuid"`
	Bio           *string        `gorm:"column:bio"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt   *time.Time     `gorm:"column:last_login_at"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the name parts for display fields on joined closure rows.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
