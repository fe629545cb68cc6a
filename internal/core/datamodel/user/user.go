package user

import "time"

type User struct {
	ID             int64     `gorm:"primaryKey" db:"id"`
	Username       string    `gorm:"column:username;uniqueIndex;not null" db:"username"`
	Name           string    `gorm:"column:name;not null" db:"name"`
	Email          string    `gorm:"column:email;uniqueIndex;not null" db:"email"`
	Department     string    `gorm:"column:department" db:"department"`
	HashedPassword string    `gorm:"column:hashed_password;not null" db:"hashed_password"`
	Role           string    `gorm:"column:role;default:user" db:"role"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" db:"created_at"`
}

func (User) TableName() string {
	return "users"
}
