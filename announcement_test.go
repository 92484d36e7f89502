package lapse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/policyforge/lapse/types"
)

func TestBuildAnnouncement(t *testing.T) {
	beforeExpiry := 5 * time.Minute
	expiry := time.Now().Add(time.Hour)
	subject := types.Subject{
		ID:     "integration:service",
		Expiry: &expiry,
		Announcement: &types.SubjectAnnouncement{
			BeforeExpiry:         &beforeExpiry,
			RequestedAckLabels:   []types.AckLabel{"connection:ack"},
			RequestedAcksTimeout: 30 * time.Second,
		},
	}
	deleteAt := expiry

	ann := buildAnnouncement("ns:policy", &subject, deleteAt)

	require.Equal(t, types.PolicyID("ns:policy"), ann.PolicyID)
	require.Equal(t, deleteAt, ann.DeleteAt)
	require.Equal(t, []string{"integration:service"}, ann.SubjectIDs)
	require.Equal(t, []types.AckLabel{"connection:ack"}, ann.Headers.AckRequests)
	require.Equal(t, 30*time.Second, ann.Headers.Timeout)
	require.NotEmpty(t, ann.Headers.CorrelationID)

	// Every publication is individually traceable.
	again := buildAnnouncement("ns:policy", &subject, deleteAt)
	require.NotEqual(t, ann.Headers.CorrelationID, again.Headers.CorrelationID)
}

func TestBuildDeleteCommand(t *testing.T) {
	subject := types.Subject{ID: "integration:service"}

	cmd := buildDeleteCommand("ns:policy", &subject)

	require.Equal(t, types.PolicyID("ns:policy"), cmd.PolicyID)
	require.Equal(t, "integration:service", cmd.SubjectID)
	require.False(t, cmd.Headers.ResponseRequired)
	require.NotEmpty(t, cmd.Headers.CorrelationID)

	// Deliberate re-sends carry fresh correlation ids so transport-level
	// deduplication does not collapse them.
	again := buildDeleteCommand("ns:policy", &subject)
	require.NotEqual(t, cmd.Headers.CorrelationID, again.Headers.CorrelationID)
}
