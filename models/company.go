package models

import "time"

type Company struct {
	Id        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:191" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:191" json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Company) TableName() string {
	return "companies"
}
