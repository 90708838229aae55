package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/saravanan10393/prompt-playground/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserService implements the lookup-or-create identity scheme: the opaque
// token is the sole credential, created lazily on first contact.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

var nameAdjectives = []string{
	"Swift", "Bright", "Bold", "Clever", "Wise", "Brave", "Noble", "Fierce",
	"Gentle", "Wild", "Free", "Proud", "Strong", "Quick", "Sharp", "Calm",
	"Daring", "Eager", "Jolly", "Lively", "Merry", "Zesty",
}

var nameAnimals = []string{
	"Fox", "Bear", "Wolf", "Eagle", "Lion", "Tiger", "Dragon", "Phoenix",
	"Falcon", "Hawk", "Owl", "Raven", "Panther", "Jaguar", "Leopard",
	"Cheetah", "Lynx", "Cougar", "Puma", "Ocelot",
}

func randomUsername() string {
	adjective := nameAdjectives[rand.Intn(len(nameAdjectives))]
	animal := nameAnimals[rand.Intn(len(nameAnimals))]
	suffix := strings.ToLower(uuid.NewString()[:4])
	return fmt.Sprintf("%s_%s_%s", adjective, animal, suffix)
}

func NewToken() string {
	return uuid.NewString()
}

// GetOrCreate returns the user for the token, creating one with a
// generated display name on first contact. An empty name falls back to
// the generated one.
func (s *UserService) GetOrCreate(token, name string) (*models.User, error) {
	var user models.User
	err := s.db.Where("token = ?", token).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = randomUsername()
	}
	user = models.User{Token: token, Name: name}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByToken(token string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateName(userID uint, name string) (*models.User, error) {
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Update("name", name).Error; err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
