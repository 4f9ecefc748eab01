package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
)

// NotificationSettings mirrors the settings screen's toggle set.
type NotificationSettings struct {
	Announcements      bool `json:"announcements"`
	Assignments        bool `json:"assignments"`
	Quizzes            bool `json:"quizzes"`
	Courses            bool `json:"courses"`
	General            bool `json:"general"`
	Sound              bool `json:"sound"`
	Vibration          bool `json:"vibration"`
	EmailNotifications bool `json:"emailNotifications"`
}

// DefaultNotificationSettings: everything on except email.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Announcements:      true,
		Assignments:        true,
		Quizzes:            true,
		Courses:            true,
		General:            true,
		Sound:              true,
		Vibration:          true,
		EmailNotifications: false,
	}
}

// LoadNotificationSettings returns stored settings, falling back to the
// defaults when the key is absent or the stored value does not decode.
func (s *Store) LoadNotificationSettings(ctx context.Context) (NotificationSettings, error) {
	raw, err := s.Get(ctx, KeyNotificationSettings)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return DefaultNotificationSettings(), nil
		}
		return DefaultNotificationSettings(), err
	}

	var settings NotificationSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return DefaultNotificationSettings(), nil
	}
	return settings, nil
}

func (s *Store) SaveNotificationSettings(ctx context.Context, settings NotificationSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyNotificationSettings, string(raw))
}

// UnreadNotificationCount reads the stringified counter; absence or a
// malformed value reads as zero.
func (s *Store) UnreadNotificationCount(ctx context.Context) (int, error) {
	raw, err := s.Get(ctx, KeyUnreadNotificationCount)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return 0, nil
	}
	return count, nil
}

func (s *Store) SetUnreadNotificationCount(ctx context.Context, count int) error {
	if count < 0 {
		count = 0
	}
	return s.Set(ctx, KeyUnreadNotificationCount, strconv.Itoa(count))
}
