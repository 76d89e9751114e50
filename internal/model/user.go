package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('student','admin');default:'student'" json:"role"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// WhitelistEmail 允许注册的邮箱白名单
type WhitelistEmail struct {
	BaseModel
	Email   string `gorm:"size:100;unique;not null" json:"email"`
	AddedBy uint   `gorm:"index" json:"addedBy"`
	Note    string `gorm:"size:255" json:"note"`
}

func (WhitelistEmail) TableName() string {
	return "whitelist_emails"
}
