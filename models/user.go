package models

import (
	"gorm.io/gorm"
)

// User モデルの定義
type User struct {
	gorm.Model
	Nickname string
	Matches  []Match `gorm:"foreignKey:UserID"`
}
