package models

import "time"

type Scenario struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GameID      uint      `gorm:"not null;index" json:"game_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	OrderIndex  int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}
