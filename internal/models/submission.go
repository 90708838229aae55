package models

import "time"

// Submission rows for one (game, user) are only ever written as a full
// batch, one row per scenario. A resubmission deletes the whole batch
// before inserting the new one.
type Submission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	GameID        uint      `gorm:"not null;uniqueIndex:idx_submission_unique;index" json:"game_id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_submission_unique;index" json:"user_id"`
	ScenarioID    uint      `gorm:"not null;uniqueIndex:idx_submission_unique" json:"scenario_id"`
	Prompt        string    `gorm:"type:text;not null" json:"prompt"`
	Score         int       `gorm:"not null" json:"score"`
	Feedback      string    `gorm:"type:text;not null" json:"feedback"`
	RefinedPrompt string    `gorm:"type:text" json:"refined_prompt"`
	CreatedAt     time.Time `json:"created_at"`
}
