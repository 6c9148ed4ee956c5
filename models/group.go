package models

import "time"

type Group struct {
	Id        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:191" json:"name"`
	CompanyId int64     `gorm:"index" json:"company_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Group) TableName() string {
	return "groups"
}
