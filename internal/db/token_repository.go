package db

import (
	"time"

	"dayrate/internal/models"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	database *gorm.DB
}

func NewRefreshTokenRepository(database *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{database: database}
}

func (repo *RefreshTokenRepository) Create(token *models.RefreshToken) error {
	return repo.database.Create(token).Error
}

func (repo *RefreshTokenRepository) FindByToken(value string) (models.RefreshToken, bool, error) {
	token := models.RefreshToken{}
	result := repo.database.Where("token = ?", value).Limit(1).Find(&token)
	if result.Error != nil {
		return models.RefreshToken{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.RefreshToken{}, false, nil
	}
	return token, true, nil
}

func (repo *RefreshTokenRepository) DeleteByID(tokenID uint) error {
	return repo.database.Delete(&models.RefreshToken{}, tokenID).Error
}

func (repo *RefreshTokenRepository) DeleteByToken(value string) error {
	return repo.database.Where("token = ?", value).Delete(&models.RefreshToken{}).Error
}

func (repo *RefreshTokenRepository) DeleteExpiredBefore(cutoff time.Time) error {
	return repo.database.Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{}).Error
}
