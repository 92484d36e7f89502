package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequiresRedelivery(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"ok", StatusOK, false},
		{"no content", StatusNoContent, false},
		{"bad request", StatusBadRequest, false},
		{"not found", StatusNotFound, false},
		{"request timeout", StatusRequestTimeout, true},
		{"failed dependency", StatusFailedDependency, true},
		{"internal error", StatusInternalError, true},
		{"service unavailable", StatusServiceUnavail, true},
		{"gateway timeout", 504, true},
		{"upper bound", 599, true},
		{"not a server error", 600, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RequiresRedelivery(tt.status))
		})
	}
}

func TestAcknowledgementsRequiresRedelivery(t *testing.T) {
	t.Run("all successful", func(t *testing.T) {
		acks := Acknowledgements{
			{Label: "connectivity:sync", Status: StatusOK},
			{Label: "search:indexed", Status: StatusNoContent},
		}
		require.False(t, acks.RequiresRedelivery())
	})

	t.Run("one transient failure triggers redelivery", func(t *testing.T) {
		acks := Acknowledgements{
			{Label: "connectivity:sync", Status: StatusOK},
			{Label: "search:indexed", Status: StatusServiceUnavail},
		}
		require.True(t, acks.RequiresRedelivery())
	})

	t.Run("terminal failures do not trigger redelivery", func(t *testing.T) {
		acks := Acknowledgements{
			{Label: "connectivity:sync", Status: StatusBadRequest},
		}
		require.False(t, acks.RequiresRedelivery())
	})

	t.Run("empty aggregate", func(t *testing.T) {
		require.False(t, Acknowledgements{}.RequiresRedelivery())
	})
}

func TestSubjectValidate(t *testing.T) {
	negative := -time.Second
	t.Run("missing id", func(t *testing.T) {
		s := Subject{}
		require.Error(t, s.Validate())
	})

	t.Run("negative beforeExpiry", func(t *testing.T) {
		s := Subject{ID: "integration:test", Announcement: &SubjectAnnouncement{BeforeExpiry: &negative}}
		require.Error(t, s.Validate())
	})

	t.Run("valid", func(t *testing.T) {
		before := 5 * time.Minute
		s := Subject{ID: "integration:test", Announcement: &SubjectAnnouncement{BeforeExpiry: &before}}
		require.NoError(t, s.Validate())
	})
}
