package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetAllMessages returns every captured message, newest first.
func (s *Store) GetAllMessages(ctx context.Context) ([]CapturedMessage, error) {
	var messages []CapturedMessage
	if err := s.DB.WithContext(ctx).Order("timestamp DESC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("GetAllMessages: %w", err)
	}
	return messages, nil
}

func (s *Store) GetMessage(ctx context.Context, id string) (*CapturedMessage, error) {
	var message CapturedMessage
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetMessage: failed to fetch message %s: %w", id, err)
	}
	return &message, nil
}

// GetMessageByExternalID returns nil, nil when the external id has not
// been captured yet.
func (s *Store) GetMessageByExternalID(ctx context.Context, externalID string) (*CapturedMessage, error) {
	var message CapturedMessage
	err := s.DB.WithContext(ctx).Where("discord_message_id = ?", externalID).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetMessageByExternalID: failed to fetch message %s: %w", externalID, err)
	}
	return &message, nil
}

// SaveCapturedMessage inserts the message unless its external id already
// exists. It reports whether a row was written.
func (s *Store) SaveCapturedMessage(ctx context.Context, message *CapturedMessage) (bool, error) {
	result := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "discord_message_id"}}, DoNothing: true}).
		Create(message)
	if result.Error != nil {
		return false, fmt.Errorf("SaveCapturedMessage: failed to save message %s: %w", message.ExternalMessageID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&CapturedMessage{}).Error; err != nil {
		return fmt.Errorf("DeleteMessage: failed to delete message %s: %w", id, err)
	}
	return nil
}
