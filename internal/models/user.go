package models

import "time"

// OfficeUser is a staff account for the self-hosted auth provider.
type OfficeUser struct {
	Base
	Email         string     `json:"email"           gorm:"size:191;uniqueIndex;not null"`
	PasswordHash  string     `json:"-"               gorm:"not null"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"   gorm:"size:64"`
}

func (OfficeUser) TableName() string { return "office_users" }
