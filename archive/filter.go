package archive

import "MediaVault/db"

// ShouldCapture returns the watch config that qualifies event for capture,
// or nil. Configs are tried in the order given and the first match wins.
func ShouldCapture(event InboundEvent, active []db.WatchConfig) *db.WatchConfig {
	if event.AuthorIsBot {
		return nil
	}

	var match *db.WatchConfig
	for i := range active {
		c := &active[i]
		if c.IsActive && c.ChannelID == event.ChannelID && c.MonitorUserID == event.AuthorID {
			match = c
			break
		}
	}
	if match == nil {
		return nil
	}

	if len(event.Attachments) == 0 && event.Content == "" {
		return nil
	}
	return match
}
