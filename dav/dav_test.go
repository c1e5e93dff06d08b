package dav

import (
	"testing"

	"github.com/emersion/go-webdav/caldav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	dav := &DAV{
		calendarHomeSet: "/calendars/alex/",
		calendars: []caldav.Calendar{
			{Path: "/calendars/alex/personal/", Name: "Personal"},
			{Path: "/calendars/alex/work/", Name: "Work"},
		},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first by default", "", "/calendars/alex/personal/"},
		{"by name", "Work", "/calendars/alex/work/"},
		{"by path", "calendars/alex/work", "/calendars/alex/work/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dav.Resolve(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := dav.Resolve("Holidays")
	assert.Error(t, err)

	_, err = (&DAV{}).Resolve("")
	assert.Error(t, err)
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "/calendars/alex/work/todo-1.ics", ObjectPath("/calendars/alex/work/", "todo-1"))
}
