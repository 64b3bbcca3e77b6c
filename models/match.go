package models

import (
	"gorm.io/gorm"
)

// Match は1人のプレイヤーのセッション（連続したラウンド）を表す
type Match struct {
	gorm.Model
	SessionID              string `gorm:"uniqueIndex;not null"`
	UserID                 uint   `gorm:"index;not null"`
	Status                 string `gorm:"index;not null;default:'active'"` // active, game_over, abandoned
	Rounds                 int    `gorm:"not null;default:1"`
	Score                  int    `gorm:"not null;default:0"`
	LivesRemaining         int    `gorm:"not null"`
	VerificationUsed       bool   `gorm:"not null;default:false"`
	VerifiedTestimonyIndex *int
	StateJSON              string `gorm:"type:text;not null"` // RoundStateをそのままJSONで保存
}
