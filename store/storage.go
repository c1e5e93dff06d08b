package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	KeyTodos                = "todos"
	KeyCalendarEvents       = "calendarEvents"
	KeyCustomSpaces         = "customSpaces"
	KeyIntegrations         = "integrations"
	KeyActiveSpace          = "activeSpace"
	KeySortOrder            = "sortOrder"
	KeyFilterType           = "filterType"
	KeyNotificationsEnabled = "notificationsEnabled"
	KeySoundEnabled         = "soundEnabled"
	KeyUsername             = "username"
	KeyUserAvatar           = "userAvatar"
	KeyAppBackground        = "appBackground"
	KeyTheme                = "theme"

	PrefixDueSoonMarker  = "notified-due-soon-"
	PrefixReminderMarker = "notified-reminder-"
)

// ErrMalformed wraps JSON decoding failures of persisted values. Callers treat
// it as "absent" after logging.
var ErrMalformed = errors.New("malformed persisted value")

// Storage is the single key/value namespace every component persists into.
// Values are strings; structured values are JSON encoded.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	// Keys returns all keys starting with prefix, in ascending order. The
	// prefix is matched literally.
	Keys(prefix string) ([]string, error)
}

// GetJSON decodes the value stored under key into v. It reports false when the
// key is absent. A value that does not decode yields an error wrapping
// ErrMalformed.
func GetJSON(s Storage, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

func SetJSON(s Storage, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(b))
}

// Clear removes every key in the namespace.
func Clear(s Storage) error {
	keys, err := s.Keys("")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.Remove(k); err != nil {
			return err
		}
	}
	return nil
}

func hasPrefix(key, prefix string) bool {
	return prefix == "" || strings.HasPrefix(key, prefix)
}
