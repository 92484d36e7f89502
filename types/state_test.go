package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateToAnnounce, "ToAnnounce"},
		{StateToAcknowledge, "ToAcknowledge"},
		{StateToDelete, "ToDelete"},
		{StateDeleted, "Deleted"},
		{StateStopped, "Stopped"},
		{State(42), "Unknown"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.state.String())
	}
}
