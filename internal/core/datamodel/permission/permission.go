package permission

import "time"

// Permission is one allowed (from, to) department pair. Absent rows mean
// "not allowed".
type Permission struct {
	ID         int64     `gorm:"primaryKey"`
	FromDeptID int64     `gorm:"column:from_dept_id;not null;uniqueIndex:uq_from_to_dept"`
	ToDeptID   int64     `gorm:"column:to_dept_id;not null;uniqueIndex:uq_from_to_dept"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Permission) TableName() string {
	return "permissions"
}
