package models

import "time"

// Employee is an enrolled identity. It belongs to exactly one (company, group)
// pair; descriptors are appended via Face rows and never rewritten here.
type Employee struct {
	Id        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	CompanyId int64     `gorm:"index" json:"company_id"`
	GroupId   int64     `gorm:"index" json:"group_id"`
	Image     string    `gorm:"type:longtext" json:"image,omitempty"` // base64 enrollment photo
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Group *Group `gorm:"foreignKey:GroupId" json:"group,omitempty"`
	Faces []Face `gorm:"foreignKey:EmployeeId" json:"faces,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}
