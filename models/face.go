package models

import (
	"encoding/json"
	"time"
)

// DescriptorSize is the dimension of a face descriptor vector.
const DescriptorSize = 128

// Face is one captured descriptor sample for an employee. A single employee may
// own several samples (different angles); matching takes the minimum distance
// across all of them.
type Face struct {
	Id         int64           `gorm:"primaryKey" json:"id"`
	EmployeeId int64           `gorm:"index" json:"employee_id"`
	Descriptor json.RawMessage `gorm:"type:json" json:"-"`       // raw JSON from the DB
	Vector     []float64       `gorm:"-" json:"descriptor"`      // decoded helper for handlers
	Image      string          `gorm:"type:longtext" json:"-"`   // base64 source frame
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Face) TableName() string {
	return "faces"
}
