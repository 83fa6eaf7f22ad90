package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the marketplace role carried by every authenticated caller
type Role string

const (
	RoleSeller Role = "SELLER"
	RoleStaff  Role = "STAFF"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleSeller, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff returns true for roles allowed to dispatch and collect pickups
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User is a marketplace account. Role is assigned once and only changed by an administrator.
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;unique" json:"email"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	Name      *string   `gorm:"type:varchar(255)" json:"name,omitempty"`
	Phone     *string   `gorm:"type:varchar(20)" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Caller is the already-authenticated identity passed into every core operation.
type Caller struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (c Caller) IsSeller() bool {
	return c.Role == RoleSeller && c.ID != ""
}

func (c Caller) IsStaff() bool {
	return c.Role.IsStaff() && c.ID != ""
}
