package models

import "time"

type Game struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatorID uint       `gorm:"not null;index" json:"creator_id"`
	Creator   User       `gorm:"foreignKey:CreatorID" json:"-"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Status    string     `gorm:"size:20;not null;default:'active'" json:"status"`
	Scenarios   []Scenario   `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"scenarios,omitempty"`
	Submissions []Submission `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

const (
	GameStatusActive = "active"
	GameStatusClosed = "closed"
)
