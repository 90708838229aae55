package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/saravanan10393/prompt-playground/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.Scenario{},
		&models.Submission{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{Token: name + "-token", Name: name}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createGame(t *testing.T, db *gorm.DB, creatorID uint, scenarioCount int) (*models.Game, []models.Scenario) {
	t.Helper()
	game := models.Game{CreatorID: creatorID, Title: "Test Game", Status: models.GameStatusActive}
	require.NoError(t, db.Create(&game).Error)

	scenarios := make([]models.Scenario, scenarioCount)
	for i := range scenarios {
		scenarios[i] = models.Scenario{
			GameID:      game.ID,
			Title:       fmt.Sprintf("Scenario %d", i+1),
			Description: "Write a prompt for this task",
			OrderIndex:  i,
		}
		require.NoError(t, db.Create(&scenarios[i]).Error)
	}
	return &game, scenarios
}

func resultsFor(scenarios []models.Scenario, scores ...int) []EvaluatedResult {
	results := make([]EvaluatedResult, len(scenarios))
	for i, sc := range scenarios {
		results[i] = EvaluatedResult{
			ScenarioID:    sc.ID,
			Prompt:        "my prompt",
			Score:         scores[i],
			Feedback:      "solid",
			RefinedPrompt: "my prompt, refined",
		}
	}
	return results
}

func TestSubmitAllCreatesBatch(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	_, scenarios := createGame(t, db, user.ID, 2)
	game := scenarios[0].GameID

	result, err := svc.SubmitAll(game, user.ID, resultsFor(scenarios, 8, 6))
	require.NoError(t, err)
	assert.Equal(t, 14, result.TotalScore)
	require.Len(t, result.Leaderboard, 1)
	assert.Equal(t, "alice", result.Leaderboard[0].Name)
	assert.Equal(t, 14, result.Leaderboard[0].TotalScore)
	assert.Equal(t, 2, result.Leaderboard[0].ScenariosCompleted)
	assert.False(t, result.Leaderboard[0].LastSubmission.IsZero(),
		"MAX(created_at) must survive the scan into a real timestamp")
}

func TestLeaderboardLastSubmissionParsed(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 1)

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	sub := models.Submission{
		GameID:     game.ID,
		UserID:     user.ID,
		ScenarioID: scenarios[0].ID,
		Prompt:     "p",
		Score:      7,
		Feedback:   "f",
		CreatedAt:  at,
	}
	require.NoError(t, db.Create(&sub).Error)

	board, err := svc.GetLeaderboard(game.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.True(t, board[0].LastSubmission.Equal(at),
		"expected %v, got %v", at, board[0].LastSubmission)
}

func TestSubmitAllReplacesPriorBatch(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 2)

	_, err := svc.SubmitAll(game.ID, user.ID, resultsFor(scenarios, 8, 6))
	require.NoError(t, err)

	_, err = svc.SubmitAll(game.ID, user.ID, resultsFor(scenarios, 9, 7))
	require.NoError(t, err)

	var rows []models.Submission
	require.NoError(t, db.Where("game_id = ? AND user_id = ?", game.ID, user.ID).
		Order("scenario_id ASC").Find(&rows).Error)

	// Exactly one row per scenario with the new scores: never four rows,
	// never a mix of old and new.
	require.Len(t, rows, 2)
	assert.Equal(t, 9, rows[0].Score)
	assert.Equal(t, 7, rows[1].Score)
}

func TestSubmitAllRejectsWrongScenarioSet(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 3)

	results := resultsFor(scenarios, 8, 6, 7)
	results[2].ScenarioID = scenarios[2].ID + 1000 // not part of the game

	_, err := svc.SubmitAll(game.ID, user.ID, results)
	require.ErrorIs(t, err, ErrScenarioMismatch)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	assert.Zero(t, count, "no rows may be written on validation failure")
}

func TestSubmitAllRejectsWrongCount(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 3)

	_, err := svc.SubmitAll(game.ID, user.ID, resultsFor(scenarios[:2], 8, 6))
	require.ErrorIs(t, err, ErrScenarioMismatch)
}

func TestSubmitAllRejectsDuplicateScenario(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 2)

	results := resultsFor(scenarios, 8, 6)
	results[1].ScenarioID = results[0].ScenarioID

	_, err := svc.SubmitAll(game.ID, user.ID, results)
	require.ErrorIs(t, err, ErrScenarioMismatch)
}

func TestSubmitAllRejectsPriorBatchKept(t *testing.T) {
	// A rejected resubmission must leave the previous batch untouched.
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 2)

	_, err := svc.SubmitAll(game.ID, user.ID, resultsFor(scenarios, 8, 6))
	require.NoError(t, err)

	bad := resultsFor(scenarios, 9, 7)
	bad[0].ScenarioID = 9999
	_, err = svc.SubmitAll(game.ID, user.ID, bad)
	require.Error(t, err)

	board, err := svc.GetLeaderboard(game.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 14, board[0].TotalScore)
}

func TestLeaderboardRequiresFullCompletion(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 2)

	_, err := svc.SubmitAll(game.ID, user.ID, resultsFor(scenarios, 8, 6))
	require.NoError(t, err)

	board, err := svc.GetLeaderboard(game.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)

	// The creator adds a third scenario: the user no longer covers the
	// full set and drops off the board, though their rows persist.
	third := models.Scenario{GameID: game.ID, Title: "Scenario 3", Description: "New task", OrderIndex: 2}
	require.NoError(t, db.Create(&third).Error)

	board, err = svc.GetLeaderboard(game.ID)
	require.NoError(t, err)
	assert.Empty(t, board)

	subs, err := svc.GetUserSubmissions(game.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// Completing the new full set restores them with the full sum.
	all := append([]models.Scenario{}, scenarios...)
	all = append(all, third)
	_, err = svc.SubmitAll(game.ID, user.ID, resultsFor(all, 8, 6, 10))
	require.NoError(t, err)

	board, err = svc.GetLeaderboard(game.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 24, board[0].TotalScore)
	assert.Equal(t, 3, board[0].ScenariosCompleted)
}

func TestLeaderboardOrdering(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	creator := createUser(t, db, "creator")
	game, scenarios := createGame(t, db, creator.ID, 3)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := svc.SubmitAll(game.ID, alice.ID, resultsFor(scenarios, 9, 8, 7))
	require.NoError(t, err)
	_, err = svc.SubmitAll(game.ID, bob.ID, resultsFor(scenarios, 10, 10, 10))
	require.NoError(t, err)

	board, err := svc.GetLeaderboard(game.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Name)
	assert.Equal(t, 30, board[0].TotalScore)
	assert.Equal(t, "alice", board[1].Name)
	assert.Equal(t, 24, board[1].TotalScore)
}

func TestLeaderboardTieBreakEarlierFinishWins(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	creator := createUser(t, db, "creator")
	game, scenarios := createGame(t, db, creator.ID, 3)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Now().Add(-time.Hour)
	insertAt := func(userID uint, at time.Time, scores ...int) {
		for i, sc := range scenarios {
			sub := models.Submission{
				GameID:     game.ID,
				UserID:     userID,
				ScenarioID: sc.ID,
				Prompt:     "p",
				Score:      scores[i],
				Feedback:   "f",
				CreatedAt:  at,
			}
			require.NoError(t, db.Create(&sub).Error)
		}
	}

	// Both score 24; bob reached it first.
	insertAt(bob.ID, base, 8, 8, 8)
	insertAt(alice.ID, base.Add(10*time.Minute), 9, 8, 7)

	board, err := svc.GetLeaderboard(game.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Name)
	assert.Equal(t, "alice", board[1].Name)
}

func TestGetUserSubmissionsOrderedByScenario(t *testing.T) {
	db := setupDB(t)
	svc := NewSubmissionService(db)
	user := createUser(t, db, "alice")
	game, scenarios := createGame(t, db, user.ID, 3)

	// Submit in reverse scenario order; reads come back in board order.
	reversed := []models.Scenario{scenarios[2], scenarios[1], scenarios[0]}
	_, err := svc.SubmitAll(game.ID, user.ID, resultsFor(reversed, 7, 8, 9))
	require.NoError(t, err)

	subs, err := svc.GetUserSubmissions(game.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "Scenario 1", subs[0].ScenarioTitle)
	assert.Equal(t, 9, subs[0].Score)
	assert.Equal(t, "Scenario 3", subs[2].ScenarioTitle)
	assert.Equal(t, 7, subs[2].Score)
}
