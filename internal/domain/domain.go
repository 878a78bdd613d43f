package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleTechnician      Role = "technician"
	RoleCollectionAgent Role = "collection_agent"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleCollectionAgent:
		return true
	}
	return false
}

// UserStatus distinguishes users who can log in from suspended ones.
// Suspended users keep their historical case attributions.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name         string     `gorm:"column:name;type:varchar(100);not null"`
	Username     string     `gorm:"column:username;type:varchar(100);uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Email        string     `gorm:"column:email;type:varchar(255)"`
	Role         Role       `gorm:"column:role;type:varchar(30);not null;index"`
	Status       UserStatus `gorm:"column:status;type:varchar(20);not null;default:'active';index"`

	// JoinedAt is the display joining date; immutable after creation.
	JoinedAt time.Time `gorm:"column:joined_at;not null"`
}

func (User) TableName() string {
	return "auth.users"
}

func (u *User) IsActive() bool {
	return u.Status == UserActive
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.Name)
}

// EligibleCollector reports whether this user may be attributed as the
// collector of a new case.
func (u *User) EligibleCollector() bool {
	return u.IsActive() && u.Role.IsValid()
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID   uuid.UUID `json:"sub"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
