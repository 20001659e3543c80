package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

func (s *Store) GetAllBackups(ctx context.Context) ([]BackupRecord, error) {
	var backups []BackupRecord
	if err := s.DB.WithContext(ctx).Order("backup_date DESC").Find(&backups).Error; err != nil {
		return nil, fmt.Errorf("GetAllBackups: %w", err)
	}
	return backups, nil
}

func (s *Store) GetBackup(ctx context.Context, id string) (*BackupRecord, error) {
	var backup BackupRecord
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&backup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetBackup: failed to fetch backup %s: %w", id, err)
	}
	return &backup, nil
}

func (s *Store) CreateBackup(ctx context.Context, backup *BackupRecord) error {
	if err := s.DB.WithContext(ctx).Create(backup).Error; err != nil {
		return fmt.Errorf("CreateBackup: failed to record %s backup: %w", backup.Status, err)
	}
	return nil
}
