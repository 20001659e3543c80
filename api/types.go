package api

import (
	"time"

	"MediaVault/db"
)

type loginRequest struct {
	Password string `json:"password"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type authCheckResponse struct {
	Authenticated bool `json:"authenticated"`
}

type errorResponse struct {
	Error any `json:"error"`
}

// fieldError describes one invalid request field.
type fieldError struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

type createConfigRequest struct {
	ServerID          string  `json:"serverId"`
	ServerName        string  `json:"serverName"`
	ChannelID         string  `json:"channelId"`
	ChannelName       string  `json:"channelName"`
	BackupChannelID   *string `json:"backupChannelId"`
	BackupChannelName *string `json:"backupChannelName"`
	MonitorUserID     string  `json:"monitorUserId"`
	IsActive          *bool   `json:"isActive"`
}

func (r createConfigRequest) validate() []fieldError {
	var errs []fieldError
	required := []struct {
		name  string
		value string
	}{
		{"serverId", r.ServerID},
		{"serverName", r.ServerName},
		{"channelId", r.ChannelID},
		{"channelName", r.ChannelName},
		{"monitorUserId", r.MonitorUserID},
	}
	for _, f := range required {
		if f.value == "" {
			errs = append(errs, fieldError{Path: []string{f.name}, Message: "Required"})
		}
	}
	return errs
}

func (r createConfigRequest) toModel() *db.WatchConfig {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &db.WatchConfig{
		ServerID:          r.ServerID,
		ServerName:        r.ServerName,
		ChannelID:         r.ChannelID,
		ChannelName:       r.ChannelName,
		BackupChannelID:   emptyToNil(r.BackupChannelID),
		BackupChannelName: emptyToNil(r.BackupChannelName),
		MonitorUserID:     r.MonitorUserID,
		IsActive:          active,
	}
}

// updateConfigRequest carries a partial update. Absent fields are left
// alone; an empty backup channel clears it.
type updateConfigRequest struct {
	ServerID          *string `json:"serverId"`
	ServerName        *string `json:"serverName"`
	ChannelID         *string `json:"channelId"`
	ChannelName       *string `json:"channelName"`
	BackupChannelID   *string `json:"backupChannelId"`
	BackupChannelName *string `json:"backupChannelName"`
	MonitorUserID     *string `json:"monitorUserId"`
	IsActive          *bool   `json:"isActive"`
}

func (r updateConfigRequest) columns() map[string]any {
	updates := map[string]any{}
	setString := func(column string, v *string) {
		if v != nil && *v != "" {
			updates[column] = *v
		}
	}
	setOptional := func(column string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			updates[column] = nil
		} else {
			updates[column] = *v
		}
	}

	setString("server_id", r.ServerID)
	setString("server_name", r.ServerName)
	setString("channel_id", r.ChannelID)
	setString("channel_name", r.ChannelName)
	setString("monitor_user_id", r.MonitorUserID)
	setOptional("backup_channel_id", r.BackupChannelID)
	setOptional("backup_channel_name", r.BackupChannelName)
	if r.IsActive != nil {
		updates["is_active"] = *r.IsActive
	}
	return updates
}

type botStatusResponse struct {
	Connected  bool       `json:"connected"`
	Username   string     `json:"username,omitempty"`
	NextBackup *time.Time `json:"nextBackup,omitempty"`
}

// feedEvent is one live-feed frame sent to dashboard sockets.
type feedEvent struct {
	Type    string             `json:"type"`
	Message db.CapturedMessage `json:"message"`
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
