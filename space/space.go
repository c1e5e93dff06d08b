// Package space manages the sidebar spaces: the fixed built-ins and the
// user's custom ones.
package space

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mrusme/taskflow/clock"
	"github.com/mrusme/taskflow/store"
	"github.com/mrusme/taskflow/todo"
	"github.com/mrusme/taskflow/validation"
	"go.uber.org/zap"
)

// Icons custom spaces can pick from.
var Icons = []string{
	"Home", "Star", "Clock", "Calendar", "Users", "Briefcase", "Book",
	"Music", "Film", "Coffee", "Heart", "Gift", "Smile", "Zap", "Bookmark",
	"Settings", "Inbox", "FileText", "Image", "ShoppingCart", "Map",
	"Headphones", "Camera", "Compass", "Award", "Truck", "Umbrella", "Cpu",
	"Database", "Folder", "Globe", "Key", "Layers",
}

// Colors custom spaces can pick from.
var Colors = []string{
	"text-blue-500", "text-green-500", "text-red-500", "text-yellow-500",
	"text-purple-500", "text-pink-500", "text-indigo-500", "text-teal-500",
	"text-orange-500", "text-cyan-500",
}

const (
	DefaultIcon  = "Home"
	DefaultColor = "text-blue-500"
)

var (
	ErrBlankName = errors.New("space name must not be blank")
	ErrBuiltin   = errors.New("built-in spaces cannot be changed")
	ErrNotFound  = errors.New("space not found")
	ErrInvalid   = errors.New("invalid space")
)

func init() {
	validation.MustRegister("space_icon", validation.OneOf(Icons...))
	validation.MustRegister("space_color", validation.OneOf(Colors...))
}

type Space struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Icon     string `json:"icon" validate:"space_icon"`
	Color    string `json:"color,omitempty" validate:"omitempty,space_color"`
	IsCustom bool   `json:"isCustom,omitempty"`
	Count    int    `json:"count"`
}

// Builtins are always listed first and cannot be renamed or deleted.
var Builtins = []Space{
	{ID: todo.SpaceAll, Name: "All Tasks", Icon: "Layers"},
	{ID: todo.SpaceImportant, Name: "Important", Icon: "Star", Color: "text-yellow-500"},
	{ID: todo.SpaceUpcoming, Name: "Upcoming", Icon: "Clock", Color: "text-blue-500"},
	{ID: todo.SpaceToday, Name: "Today", Icon: "Calendar", Color: "text-green-500"},
	{ID: todo.SpaceTeam, Name: "Team Projects", Icon: "Users", Color: "text-purple-500"},
}

func IsBuiltin(id string) bool {
	for _, b := range Builtins {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Active is where the currently selected space lives.
type Active interface {
	ActiveSpace() string
	SetActiveSpace(id string) error
}

// TaskSource provides the tasks counted per space.
type TaskSource interface {
	List() []todo.Task
}

type Registry struct {
	st     store.Storage
	tasks  TaskSource
	active Active
	clock  clock.Clock
	log    *zap.Logger
}

func NewRegistry(st store.Storage, tasks TaskSource, active Active, clk clock.Clock, log *zap.Logger) *Registry {
	if clk == nil {
		clk = clock.Real{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{st: st, tasks: tasks, active: active, clock: clk, log: log}
}

func (r *Registry) custom() []Space {
	var spaces []Space
	if _, err := store.GetJSON(r.st, store.KeyCustomSpaces, &spaces); err != nil {
		r.log.Error("failed to load custom spaces", zap.Error(err))
		return nil
	}
	return spaces
}

func (r *Registry) save(spaces []Space) error {
	for i := range spaces {
		spaces[i].Count = 0
	}
	if err := store.SetJSON(r.st, store.KeyCustomSpaces, spaces); err != nil {
		return fmt.Errorf("failed to persist custom spaces: %w", err)
	}
	return nil
}

// List returns the built-ins followed by the custom spaces, each with the
// number of tasks it currently holds.
func (r *Registry) List() []Space {
	spaces := append(append([]Space{}, Builtins...), r.custom()...)
	var tasks []todo.Task
	if r.tasks != nil {
		tasks = r.tasks.List()
	}
	now := r.clock.Now()
	for i := range spaces {
		spaces[i].Count = todo.Count(tasks, spaces[i].ID, now)
	}
	return spaces
}

func (r *Registry) Get(id string) (Space, bool) {
	for _, s := range r.List() {
		if s.ID == id {
			return s, true
		}
	}
	return Space{}, false
}

// Search matches names case-insensitively and orders the hits by name.
func (r *Registry) Search(query string, order todo.SortOrder) []Space {
	q := strings.ToLower(strings.TrimSpace(query))
	var hits []Space
	for _, s := range r.List() {
		if strings.Contains(strings.ToLower(s.Name), q) {
			hits = append(hits, s)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := strings.ToLower(hits[i].Name), strings.ToLower(hits[j].Name)
		if order == todo.SortDesc {
			return a > b
		}
		return a < b
	})
	return hits
}

func (r *Registry) newID(existing []Space, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		taken := IsBuiltin(id)
		for _, s := range existing {
			taken = taken || s.ID == id
		}
		if !taken {
			return id
		}
		ms++
	}
}

func invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.ToLower(verrs[0].Field()))
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// Create adds a custom space. Empty icon and color fall back to the
// defaults.
func (r *Registry) Create(name, icon, color string) (Space, error) {
	name = validation.SanitizeText(name)
	if name == "" {
		return Space{}, ErrBlankName
	}
	if icon == "" {
		icon = DefaultIcon
	}
	if color == "" {
		color = DefaultColor
	}

	spaces := r.custom()
	s := Space{
		ID:       r.newID(spaces, r.clock.Now()),
		Name:     name,
		Icon:     icon,
		Color:    color,
		IsCustom: true,
	}
	if err := validation.Validate.Struct(s); err != nil {
		return Space{}, invalid(err)
	}

	if err := r.save(append(spaces, s)); err != nil {
		return Space{}, err
	}
	r.log.Debug("space created", zap.String("space", s.ID))
	return s, nil
}

func (r *Registry) Rename(id, name string) (Space, error) {
	if IsBuiltin(id) {
		return Space{}, ErrBuiltin
	}
	name = validation.SanitizeText(name)
	if name == "" {
		return Space{}, ErrBlankName
	}

	spaces := r.custom()
	for i := range spaces {
		if spaces[i].ID == id {
			spaces[i].Name = name
			renamed := spaces[i]
			if err := r.save(spaces); err != nil {
				return Space{}, err
			}
			return renamed, nil
		}
	}
	return Space{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Delete removes a custom space. Tasks keep their space id. If it was the
// active space, the active space falls back to "all".
func (r *Registry) Delete(id string) error {
	if IsBuiltin(id) {
		return ErrBuiltin
	}

	spaces := r.custom()
	for i := range spaces {
		if spaces[i].ID != id {
			continue
		}
		if err := r.save(append(spaces[:i:i], spaces[i+1:]...)); err != nil {
			return err
		}
		if r.active != nil && r.active.ActiveSpace() == id {
			return r.active.SetActiveSpace(todo.SpaceAll)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
