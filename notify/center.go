package notify

import (
	"strconv"
	"sync"

	"github.com/mrusme/taskflow/events"
	"github.com/mrusme/taskflow/store"
	"go.uber.org/zap"
)

// Center holds the newest-first list of notifications and the two user
// preferences controlling them. Notifications live in memory only; the
// preferences are persisted.
type Center struct {
	mu            sync.Mutex
	st            store.Storage
	player        Player
	log           *zap.Logger
	notifications []Notification
	enabled       bool
	sound         bool

	// Added receives every notification that made it into the list.
	Added events.Topic[Notification]
}

func NewCenter(st store.Storage, player Player, log *zap.Logger) *Center {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Center{
		st:     st,
		player: player,
		log:    log,
	}
	c.Reload()
	return c
}

// Reload rereads both preferences from storage. Absent values mean on.
func (c *Center) Reload() {
	enabled := c.loadFlag(store.KeyNotificationsEnabled, true)
	sound := c.loadFlag(store.KeySoundEnabled, true)

	c.mu.Lock()
	c.enabled = enabled
	c.sound = sound
	c.mu.Unlock()
}

func (c *Center) loadFlag(key string, def bool) bool {
	v, ok, err := c.st.Get(key)
	if err != nil {
		c.log.Error("failed to read notification setting", zap.String("key", key), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}
	return v == "true"
}

// Add prepends n unless notifications are disabled, in which case n is
// dropped. A failing tone is logged and otherwise ignored.
func (c *Center) Add(n Notification) {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	sound := c.sound
	c.notifications = append([]Notification{n}, c.notifications...)
	c.mu.Unlock()

	if sound && c.player != nil {
		if err := c.player.Play(); err != nil {
			c.log.Warn("failed to play notification sound", zap.Error(err))
		}
	}

	c.Added.Publish(n)
}

func (c *Center) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.notifications {
		if n.ID == id {
			c.notifications = append(c.notifications[:i:i], c.notifications[i+1:]...)
			return
		}
	}
}

func (c *Center) MarkAsRead(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
			return
		}
	}
}

func (c *Center) MarkAllAsRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		c.notifications[i].Read = true
	}
}

// Open marks the notification as read and returns the task it refers to, if
// any. The caller must tolerate a task that no longer exists.
func (c *Center) Open(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
			return c.notifications[i].TaskID, c.notifications[i].TaskID != ""
		}
	}
	return "", false
}

func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

func (c *Center) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *Center) SoundEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sound
}

func (c *Center) SetNotificationsEnabled(enabled bool) error {
	if err := c.st.Set(store.KeyNotificationsEnabled, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
	return nil
}

func (c *Center) SetSoundEnabled(enabled bool) error {
	if err := c.st.Set(store.KeySoundEnabled, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	c.mu.Lock()
	c.sound = enabled
	c.mu.Unlock()
	return nil
}
