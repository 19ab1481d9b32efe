package model

import (
	"time"

	"github.com/google/uuid"
)

// Rol values for role-based access.
const (
	RolePompiste = "pompiste"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// User stores system users with role-based access.
// Role: "pompiste" | "manager" | "admin"
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	// StationID restricts a pompiste to one station; nil = all stations
	StationID *uuid.UUID `gorm:"type:uuid;index"`
	Active    bool       `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsManager reports whether the role may perform manager-level operations.
func IsManager(role string) bool {
	return role == RoleManager || role == RoleAdmin
}
