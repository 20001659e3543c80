package api

import "time"

const (
	sessionCookieName = "mediavault_session"
	sessionTTL        = 7 * 24 * time.Hour
	redisSessionKey   = "session:"

	maxRequestBody = 1 << 20

	feedBufferSize   = 64
	feedWriteTimeout = 10 * time.Second
	feedEventCapture = "message_captured"
)

const (
	errUnauthorized       = "Unauthorized"
	errInvalidPassword    = "Invalid password"
	errInvalidBody        = "Invalid request body"
	errLogoutFailed       = "Failed to logout"
	errFetchMessages      = "Failed to fetch messages"
	errFetchMessage       = "Failed to fetch message"
	errMessageNotFound    = "Message not found"
	errDeleteMessage      = "Failed to delete message"
	errFetchConfigs       = "Failed to fetch configurations"
	errCreateConfig       = "Failed to create configuration"
	errUpdateConfig       = "Failed to update configuration"
	errConfigNotFound     = "Configuration not found"
	errDeleteConfig       = "Failed to delete configuration"
	errFetchBackups       = "Failed to fetch backups"
	errTriggerBackup      = "Failed to trigger backup"
	errSessionUnavailable = "Failed to create session"
)
