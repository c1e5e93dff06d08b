// Package settings keeps the scalar preferences of the app: UI state,
// profile and appearance.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrusme/taskflow/events"
	"github.com/mrusme/taskflow/store"
	"github.com/mrusme/taskflow/todo"
	"github.com/mrusme/taskflow/validation"
	"go.uber.org/zap"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

const (
	DefaultSortOrder  = todo.SortDesc
	DefaultFilterType = todo.FilterAll
	DefaultTheme      = ThemeSystem
	// DefaultUsername is shown until a name is picked.
	DefaultUsername = "user"
)

var (
	ErrBlankName    = errors.New("name must not be blank")
	ErrInvalidValue = errors.New("invalid setting value")
)

// Validation tags of the stored values.
const (
	tagSortOrder  = "oneof=asc desc"
	tagFilterType = "oneof=all completed incomplete priority"
	tagTheme      = "oneof=light dark system"
	tagAvatar     = "image_ref"
	tagBackground = "background"
)

type Settings struct {
	st  store.Storage
	log *zap.Logger

	// Changed fires after every write with the key and its new value. A
	// removal carries an empty value; Reset fires it once with an empty key.
	Changed events.Topic[events.StorageChange]
}

func New(st store.Storage, log *zap.Logger) *Settings {
	if log == nil {
		log = zap.NewNop()
	}
	return &Settings{st: st, log: log}
}

func (s *Settings) get(key, def string) string {
	v, ok, err := s.st.Get(key)
	if err != nil {
		s.log.Error("failed to read setting", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok || v == "" {
		return def
	}
	return v
}

func (s *Settings) set(key, value string) error {
	if err := s.st.Set(key, value); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	s.Changed.Publish(events.StorageChange{Key: key, Value: value})
	return nil
}

func (s *Settings) remove(key string) error {
	if err := s.st.Remove(key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	s.Changed.Publish(events.StorageChange{Key: key})
	return nil
}

func check(value, tag string) error {
	if err := validation.Validate.Var(value, tag); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidValue, value)
	}
	return nil
}

// getValid returns the stored value, or def when it fails tag.
func (s *Settings) getValid(key, def, tag string) string {
	v := s.get(key, def)
	if check(v, tag) != nil {
		return def
	}
	return v
}

func (s *Settings) ActiveSpace() string {
	return s.get(store.KeyActiveSpace, todo.SpaceAll)
}

func (s *Settings) SetActiveSpace(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		id = todo.SpaceAll
	}
	return s.set(store.KeyActiveSpace, id)
}

// SortOrder falls back to the default when the stored value is unknown.
func (s *Settings) SortOrder() todo.SortOrder {
	return todo.SortOrder(s.getValid(store.KeySortOrder, string(DefaultSortOrder), tagSortOrder))
}

func (s *Settings) SetSortOrder(o todo.SortOrder) error {
	if err := check(string(o), tagSortOrder); err != nil {
		return err
	}
	return s.set(store.KeySortOrder, string(o))
}

func (s *Settings) FilterType() todo.FilterType {
	return todo.FilterType(s.getValid(store.KeyFilterType, string(DefaultFilterType), tagFilterType))
}

func (s *Settings) SetFilterType(f todo.FilterType) error {
	if err := check(string(f), tagFilterType); err != nil {
		return err
	}
	return s.set(store.KeyFilterType, string(f))
}

type Profile struct {
	Username string `json:"username"`
	Avatar   string `json:"userAvatar,omitempty"`
}

func (s *Settings) Profile() Profile {
	return Profile{
		Username: s.get(store.KeyUsername, DefaultUsername),
		Avatar:   s.get(store.KeyUserAvatar, ""),
	}
}

func (s *Settings) SetUsername(name string) error {
	name = validation.SanitizeText(name)
	if name == "" {
		return ErrBlankName
	}
	return s.set(store.KeyUsername, name)
}

// SetAvatar accepts an image data URL or an http(s) URL. An empty value
// removes the avatar.
func (s *Settings) SetAvatar(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return s.remove(store.KeyUserAvatar)
	}
	if err := check(ref, tagAvatar); err != nil {
		return err
	}
	return s.set(store.KeyUserAvatar, ref)
}

// Background returns the stored background, if any.
func (s *Settings) Background() (string, bool) {
	v := s.get(store.KeyAppBackground, "")
	return v, v != ""
}

func (s *Settings) SetBackground(bg string) error {
	bg = strings.TrimSpace(bg)
	if bg == "" {
		return fmt.Errorf("%w: empty background", ErrInvalidValue)
	}
	if err := check(bg, tagBackground); err != nil {
		return err
	}
	return s.set(store.KeyAppBackground, bg)
}

func (s *Settings) ResetBackground() error {
	return s.remove(store.KeyAppBackground)
}

func (s *Settings) Theme() Theme {
	return Theme(s.getValid(store.KeyTheme, string(DefaultTheme), tagTheme))
}

func (s *Settings) SetTheme(t Theme) error {
	if err := check(string(t), tagTheme); err != nil {
		return err
	}
	return s.set(store.KeyTheme, string(t))
}

// Reset removes every key from storage, tasks included.
func (s *Settings) Reset() error {
	if err := store.Clear(s.st); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	s.log.Info("storage cleared")
	s.Changed.Publish(events.StorageChange{})
	return nil
}
