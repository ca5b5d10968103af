package model

import "time"

type CartStatus string

const (
	CartStatusActive CartStatus = "ACTIVE"
	// 保留中の注文に変換済み。明細は保持したまま編集をロックする。
	CartStatusCheckedOut CartStatus = "CHECKED_OUT"
	CartStatusAbandoned  CartStatus = "ABANDONED"
)

// カート。UserIDかSessionTokenのどちらか一方だけが入る。
// 所有者ごとにACTIVEは1つ。
type Cart struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *int64     `gorm:"index" json:"user_id"`
	SessionToken *string    `gorm:"type:varchar(64);index" json:"session_token"`
	Status       CartStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
