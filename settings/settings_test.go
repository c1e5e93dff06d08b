package settings

import (
	"testing"

	"github.com/mrusme/taskflow/events"
	"github.com/mrusme/taskflow/store"
	"github.com/mrusme/taskflow/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(t *testing.T) (*Settings, *store.Memory, *[]events.StorageChange) {
	t.Helper()
	st := store.NewMemory()
	s := New(st, nil)
	var changes []events.StorageChange
	s.Changed.Subscribe(func(c events.StorageChange) { changes = append(changes, c) })
	return s, st, &changes
}

func TestDefaults(t *testing.T) {
	s, _, _ := newTestSettings(t)

	assert.Equal(t, todo.SpaceAll, s.ActiveSpace())
	assert.Equal(t, todo.SortDesc, s.SortOrder())
	assert.Equal(t, todo.FilterAll, s.FilterType())
	assert.Equal(t, ThemeSystem, s.Theme())
	assert.Equal(t, Profile{Username: "user"}, s.Profile())
	_, ok := s.Background()
	assert.False(t, ok)
}

func TestUIState_PersistsAndBroadcasts(t *testing.T) {
	s, st, changes := newTestSettings(t)

	require.NoError(t, s.SetActiveSpace("today"))
	require.NoError(t, s.SetSortOrder(todo.SortAsc))
	require.NoError(t, s.SetFilterType(todo.FilterPriority))

	assert.Equal(t, "today", s.ActiveSpace())
	assert.Equal(t, todo.SortAsc, s.SortOrder())
	assert.Equal(t, todo.FilterPriority, s.FilterType())
	raw, _, _ := st.Get(store.KeySortOrder)
	assert.Equal(t, "asc", raw)

	assert.Equal(t, []events.StorageChange{
		{Key: "activeSpace", Value: "today"},
		{Key: "sortOrder", Value: "asc"},
		{Key: "filterType", Value: "priority"},
	}, *changes)
}

func TestUIState_RejectsUnknownValues(t *testing.T) {
	s, st, changes := newTestSettings(t)

	assert.ErrorIs(t, s.SetSortOrder("sideways"), ErrInvalidValue)
	assert.ErrorIs(t, s.SetFilterType("archived"), ErrInvalidValue)
	assert.ErrorIs(t, s.SetTheme("sepia"), ErrInvalidValue)
	assert.Empty(t, *changes)

	require.NoError(t, st.Set(store.KeySortOrder, "garbage"))
	assert.Equal(t, todo.SortDesc, s.SortOrder())
}

func TestProfile(t *testing.T) {
	s, _, _ := newTestSettings(t)

	assert.ErrorIs(t, s.SetUsername("   "), ErrBlankName)
	require.NoError(t, s.SetUsername("  Sam "))
	assert.Equal(t, "Sam", s.Profile().Username)

	assert.ErrorIs(t, s.SetAvatar("me.png"), ErrInvalidValue)
	require.NoError(t, s.SetAvatar("data:image/png;base64,iVBORw0KGgo="))
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", s.Profile().Avatar)
	require.NoError(t, s.SetAvatar(""))
	assert.Empty(t, s.Profile().Avatar)
}

func TestAppearance(t *testing.T) {
	s, st, changes := newTestSettings(t)

	assert.ErrorIs(t, s.SetBackground(""), ErrInvalidValue)
	assert.ErrorIs(t, s.SetBackground("blue"), ErrInvalidValue)

	require.NoError(t, s.SetBackground("linear-gradient(to right, #000, #fff)"))
	bg, ok := s.Background()
	assert.True(t, ok)
	assert.Equal(t, "linear-gradient(to right, #000, #fff)", bg)

	require.NoError(t, s.ResetBackground())
	_, ok, _ = st.Get(store.KeyAppBackground)
	assert.False(t, ok)
	assert.Equal(t, events.StorageChange{Key: "appBackground"}, (*changes)[len(*changes)-1])

	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestIntegrations(t *testing.T) {
	s, _, _ := newTestSettings(t)

	all := s.Integrations("")
	require.Len(t, all, 8)
	for _, in := range all {
		assert.False(t, in.Connected)
	}
	assert.Len(t, s.Integrations(CategoryCalendar), 2)
	assert.Len(t, s.Integrations(CategoryCommunication), 1)

	in, err := s.Connect("slack")
	require.NoError(t, err)
	assert.True(t, in.Connected)
	assert.Equal(t, "https://slack.com/oauth/v2/authorize", in.AuthURL)
	assert.True(t, s.Integrations(CategoryCommunication)[0].Connected)

	_, err = s.Disconnect("slack")
	require.NoError(t, err)
	assert.False(t, s.Integrations(CategoryCommunication)[0].Connected)

	_, err = s.Connect("myspace")
	assert.ErrorIs(t, err, ErrUnknownIntegration)
}

func TestReset(t *testing.T) {
	s, st, _ := newTestSettings(t)
	require.NoError(t, s.SetUsername("Sam"))
	require.NoError(t, st.Set(store.KeyTodos, "[]"))

	require.NoError(t, s.Reset())

	keys, err := st.Keys("")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, "user", s.Profile().Username)
}
