package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/saravanan10393/prompt-playground/internal/models"

	"gorm.io/gorm"
)

var ErrScenarioMismatch = errors.New("invalid scenario IDs in submission")

// SubmissionService owns the consistency invariant over submissions: a
// user's rows for a game exist only as a complete batch, one per scenario,
// and are superseded only as a complete batch. The leaderboard is derived
// from those rows on every read, never cached.
type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

type EvaluatedResult struct {
	ScenarioID    uint   `json:"scenarioId"`
	Prompt        string `json:"prompt"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	RefinedPrompt string `json:"refinedPrompt"`
}

type LeaderboardEntry struct {
	Name               string    `json:"name"`
	Token              string    `json:"token"`
	TotalScore         int       `json:"total_score"`
	ScenariosCompleted int       `json:"scenarios_completed"`
	LastSubmission     time.Time `json:"last_submission"`
}

type SubmitResult struct {
	Evaluations []EvaluatedResult  `json:"evaluations"`
	TotalScore  int                `json:"totalScore"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// SubmitAll atomically replaces the user's prior submissions for the game
// with the evaluated batch. The result set must cover the game's scenarios
// exactly; anything else is rejected before any row is touched. A partial
// overwrite could mix a stale high score for one scenario with a new low
// score for another, corrupting the aggregate.
func (s *SubmissionService) SubmitAll(gameID, userID uint, results []EvaluatedResult) (*SubmitResult, error) {
	var scenarios []models.Scenario
	if err := s.db.Where("game_id = ?", gameID).Find(&scenarios).Error; err != nil {
		return nil, err
	}
	if len(scenarios) < MinScenarios || len(scenarios) > MaxScenarios {
		return nil, ErrScenarioCount
	}

	if len(results) != len(scenarios) {
		return nil, fmt.Errorf("%w: must submit %d prompts for this game", ErrScenarioMismatch, len(scenarios))
	}

	expected := make(map[uint]bool, len(scenarios))
	for _, sc := range scenarios {
		expected[sc.ID] = true
	}
	seen := make(map[uint]bool, len(results))
	for _, r := range results {
		if !expected[r.ScenarioID] || seen[r.ScenarioID] {
			return nil, ErrScenarioMismatch
		}
		seen[r.ScenarioID] = true
	}

	// Delete-then-insert in one transaction so no stale row from a prior
	// attempt with a different scenario set can survive, and a concurrent
	// leaderboard read never observes a half-replaced batch.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ? AND user_id = ?", gameID, userID).
			Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		for _, r := range results {
			sub := models.Submission{
				GameID:        gameID,
				UserID:        userID,
				ScenarioID:    r.ScenarioID,
				Prompt:        r.Prompt,
				Score:         r.Score,
				Feedback:      r.Feedback,
				RefinedPrompt: r.RefinedPrompt,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	totalScore := 0
	for _, r := range results {
		totalScore += r.Score
	}

	leaderboard, err := s.GetLeaderboard(gameID)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		Evaluations: results,
		TotalScore:  totalScore,
		Leaderboard: leaderboard,
	}, nil
}

// leaderboardRow receives the raw aggregates. MAX(created_at) loses the
// column's time affinity, so drivers hand it back as a string; it is
// parsed into a time.Time after the scan.
type leaderboardRow struct {
	Name               string
	Token              string
	TotalScore         int
	ScenariosCompleted int
	LastSubmission     string
}

var submissionTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseSubmissionTime(s string) time.Time {
	for _, layout := range submissionTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GetLeaderboard ranks users who completed every scenario the game
// currently has. The required count is computed per query, not cached, so
// the board stays correct as the creator adds or removes scenarios.
// Ties on total score go to whoever finished earlier.
func (s *SubmissionService) GetLeaderboard(gameID uint) ([]LeaderboardEntry, error) {
	rows := []leaderboardRow{}
	err := s.db.Raw(`
		SELECT
			u.name,
			u.token,
			SUM(s.score) AS total_score,
			COUNT(DISTINCT s.scenario_id) AS scenarios_completed,
			MAX(s.created_at) AS last_submission
		FROM submissions s
		JOIN users u ON u.id = s.user_id
		WHERE s.game_id = ?
		GROUP BY s.user_id, u.name, u.token
		HAVING COUNT(DISTINCT s.scenario_id) = (
			SELECT COUNT(*) FROM scenarios WHERE scenarios.game_id = ?
		)
		ORDER BY total_score DESC, last_submission ASC
	`, gameID, gameID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, LeaderboardEntry{
			Name:               row.Name,
			Token:              row.Token,
			TotalScore:         row.TotalScore,
			ScenariosCompleted: row.ScenariosCompleted,
			LastSubmission:     parseSubmissionTime(row.LastSubmission),
		})
	}
	return entries, nil
}

// GetUserSubmissions returns the user's current batch for a game,
// decorated with scenario context, ordered by scenario position.
type SubmissionWithScenario struct {
	models.Submission
	ScenarioTitle       string `json:"scenario_title"`
	ScenarioDescription string `json:"scenario_description"`
	OrderIndex          int    `json:"order_index"`
}

func (s *SubmissionService) GetUserSubmissions(gameID, userID uint) ([]SubmissionWithScenario, error) {
	subs := []SubmissionWithScenario{}
	err := s.db.Model(&models.Submission{}).
		Select("submissions.*, scenarios.title AS scenario_title, scenarios.description AS scenario_description, scenarios.order_index AS order_index").
		Joins("JOIN scenarios ON scenarios.id = submissions.scenario_id").
		Where("submissions.game_id = ? AND submissions.user_id = ?", gameID, userID).
		Order("scenarios.order_index ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
