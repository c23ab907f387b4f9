package services

import (
	"errors"

	"scoresync/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{db: db}
}

type CreateGameRequest struct {
	GameID  string               `json:"game_id"`
	Name    string               `json:"name" binding:"required"`
	Players []models.StatePlayer `json:"players"`
}

// CreateGame registers a game under its client-assigned logical id, or
// generates one when the client did not supply it. ownerID 0 records the
// game as anonymous.
func (s *GameService) CreateGame(ownerID uint, req *CreateGameRequest) (*models.Game, error) {
	gameID := req.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}

	var existing models.Game
	if err := s.db.Where("game_id = ?", gameID).First(&existing).Error; err == nil {
		return nil, ErrGameIDInUse
	}

	game := models.Game{
		GameID:  gameID,
		OwnerID: ownerID,
		Name:    req.Name,
		Status:  "active",
		State: models.GameState{
			Players: req.Players,
			Rounds:  []models.StateRound{},
			Status:  "active",
		},
	}

	if err := s.db.Create(&game).Error; err != nil {
		return nil, err
	}

	return &game, nil
}

func (s *GameService) GetGameByID(gameID string) (*models.Game, error) {
	var game models.Game
	if err := s.db.Where("game_id = ?", gameID).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *GameService) GetUserGames(userID uint) ([]models.Game, error) {
	var games []models.Game
	err := s.db.Where("owner_id = ?", userID).Order("updated_at DESC").Find(&games).Error
	return games, err
}
