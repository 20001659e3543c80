package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

func (s *Store) GetAllWatchConfigs(ctx context.Context) ([]WatchConfig, error) {
	var configs []WatchConfig
	if err := s.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("GetAllWatchConfigs: %w", err)
	}
	return configs, nil
}

// GetActiveWatchConfigs returns active configs oldest first. Callers that
// pick "the first match" rely on this order.
func (s *Store) GetActiveWatchConfigs(ctx context.Context) ([]WatchConfig, error) {
	var configs []WatchConfig
	err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("GetActiveWatchConfigs: %w", err)
	}
	return configs, nil
}

// GetWatchConfig returns nil, nil when no config has the given id.
func (s *Store) GetWatchConfig(ctx context.Context, id string) (*WatchConfig, error) {
	var config WatchConfig
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetWatchConfig: failed to fetch config %s: %w", id, err)
	}
	return &config, nil
}

func (s *Store) CreateWatchConfig(ctx context.Context, config *WatchConfig) error {
	if err := s.DB.WithContext(ctx).Create(config).Error; err != nil {
		return fmt.Errorf("CreateWatchConfig: failed to save config for channel %s: %w", config.ChannelID, err)
	}
	return nil
}

// UpdateWatchConfig applies column updates and returns the updated row,
// or nil, nil when the config does not exist.
func (s *Store) UpdateWatchConfig(ctx context.Context, id string, updates map[string]any) (*WatchConfig, error) {
	if len(updates) > 0 {
		err := s.DB.WithContext(ctx).Model(&WatchConfig{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("UpdateWatchConfig: failed to update config %s: %w", id, err)
		}
	}
	return s.GetWatchConfig(ctx, id)
}

func (s *Store) DeleteWatchConfig(ctx context.Context, id string) error {
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&WatchConfig{}).Error; err != nil {
		return fmt.Errorf("DeleteWatchConfig: failed to delete config %s: %w", id, err)
	}
	return nil
}
