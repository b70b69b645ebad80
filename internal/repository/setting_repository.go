package repository

import (
	"errors"

	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) services.SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(key string) (string, bool, error) {
	var setting models.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func (r *settingRepository) Set(key, value string) error {
	var setting models.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{
			ID:    uuid.New(),
			Key:   key,
			Value: value,
		}
		return r.db.Create(&setting).Error
	}
	if err != nil {
		return err
	}

	setting.Value = value
	return r.db.Save(&setting).Error
}
