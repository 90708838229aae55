package services

import (
	"errors"

	"github.com/saravanan10393/prompt-playground/internal/models"

	"gorm.io/gorm"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrNotGameOwner  = errors.New("game not found or you don't have permission to edit it")
	ErrScenarioCount = errors.New("a game must have between 1 and 10 scenarios")
)

const (
	MinScenarios = 1
	MaxScenarios = 10
)

type GameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{db: db}
}

type ScenarioInput struct {
	ID          uint   `json:"id,omitempty"`
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description"`
}

type GameSummary struct {
	models.Game
	CreatorName string `json:"creator_name"`
}

func (s *GameService) CreateGame(creatorID uint, title string, scenarios []ScenarioInput) (*models.Game, error) {
	if len(scenarios) < MinScenarios || len(scenarios) > MaxScenarios {
		return nil, ErrScenarioCount
	}

	game := models.Game{
		CreatorID: creatorID,
		Title:     title,
		Status:    models.GameStatusActive,
	}

	tx := s.db.Begin()
	if err := tx.Create(&game).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i, sc := range scenarios {
		scenario := models.Scenario{
			GameID:      game.ID,
			Title:       sc.Title,
			Description: sc.Description,
			OrderIndex:  i,
		}
		if err := tx.Create(&scenario).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetGame(game.ID)
}

func (s *GameService) GetGame(gameID uint) (*models.Game, error) {
	var game models.Game
	err := s.db.Preload("Scenarios", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC")
	}).First(&game, gameID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

// ListActive returns publicly listed games, newest first, with the
// creator's display name joined in.
func (s *GameService) ListActive() ([]GameSummary, error) {
	var games []GameSummary
	err := s.db.Model(&models.Game{}).
		Select("games.*, users.name AS creator_name").
		Joins("JOIN users ON users.id = games.creator_id").
		Where("games.status = ?", models.GameStatusActive).
		Order("games.created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (s *GameService) getOwned(gameID, creatorID uint) (*models.Game, error) {
	var game models.Game
	if err := s.db.Where("id = ? AND creator_id = ?", gameID, creatorID).First(&game).Error; err != nil {
		return nil, ErrNotGameOwner
	}
	return &game, nil
}

// UpdateGame rewrites the title and scenario texts. Scenario identity is
// preserved so existing submissions keep pointing at the same rows.
func (s *GameService) UpdateGame(gameID, creatorID uint, title string, scenarios []ScenarioInput) (*models.Game, error) {
	if _, err := s.getOwned(gameID, creatorID); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if err := tx.Model(&models.Game{}).Where("id = ?", gameID).Update("title", title).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, sc := range scenarios {
		err := tx.Model(&models.Scenario{}).
			Where("id = ? AND game_id = ?", sc.ID, gameID).
			Updates(map[string]interface{}{"title": sc.Title, "description": sc.Description}).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetGame(gameID)
}

// DeleteGame removes the game with its scenarios and submissions. The
// rows are deleted explicitly in one transaction rather than relying on
// database-level cascades, which not every deployment enforces.
func (s *GameService) DeleteGame(gameID, creatorID uint) error {
	if _, err := s.getOwned(gameID, creatorID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", gameID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&models.Scenario{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Game{}, gameID).Error
	})
}

type Editable struct {
	Editable       bool   `json:"editable"`
	HasSubmissions bool   `json:"hasSubmissions"`
	Reason         string `json:"reason"`
}

func (s *GameService) CheckEditable(gameID, userID uint) (*Editable, error) {
	if _, err := s.getOwned(gameID, userID); err != nil {
		return &Editable{
			Editable: false,
			Reason:   "You don't have permission to edit this game",
		}, nil
	}

	var count int64
	if err := s.db.Model(&models.Submission{}).Where("game_id = ?", gameID).Count(&count).Error; err != nil {
		return nil, err
	}

	reason := "Game can be edited safely"
	if count > 0 {
		reason = "Game has submissions. Editing may affect user experience."
	}
	return &Editable{Editable: true, HasSubmissions: count > 0, Reason: reason}, nil
}
