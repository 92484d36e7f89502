package pubsub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	lapsetest "github.com/policyforge/lapse/testing"
	"github.com/policyforge/lapse/types"
)

func testCommand(correlationID string) *types.DeleteExpiredSubject {
	return &types.DeleteExpiredSubject{
		PolicyID:  testPolicyID,
		SubjectID: "integration:svc",
		Headers: types.Headers{
			CorrelationID:    correlationID,
			ResponseRequired: false,
		},
	}
}

func streamMsgCount(t *testing.T, fwd *Forwarder, cfg Config) uint64 {
	t.Helper()

	stream, err := fwd.js.Stream(t.Context(), cfg.CommandStream)
	require.NoError(t, err)
	info, err := stream.Info(t.Context())
	require.NoError(t, err)

	return info.State.Msgs
}

func TestNewForwarderRequiresConn(t *testing.T) {
	_, err := NewForwarder(t.Context(), nil, DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrConnRequired)
}

func TestForwarderPersistsCommand(t *testing.T) {
	_, nc := lapsetest.StartEmbeddedNATS(t)
	cfg := DefaultConfig()

	fwd, err := NewForwarder(t.Context(), nc, cfg, lapsetest.NewTestLogger(t))
	require.NoError(t, err)
	defer fwd.Close()

	fwd.Tell(testCommand("corr-1"))
	require.Eventually(t, func() bool {
		return streamMsgCount(t, fwd, cfg) == 1
	}, 5*time.Second, 20*time.Millisecond)

	// The persisted payload round-trips.
	cons, err := fwd.js.CreateOrUpdateConsumer(t.Context(), cfg.CommandStream, jetstream.ConsumerConfig{
		AckPolicy: jetstream.AckExplicitPolicy,
	})
	require.NoError(t, err)

	batch, err := cons.Fetch(1, jetstream.FetchMaxWait(2*time.Second))
	require.NoError(t, err)

	var got types.DeleteExpiredSubject
	for msg := range batch.Messages() {
		require.NoError(t, json.Unmarshal(msg.Data(), &got))
		require.NoError(t, msg.Ack())
	}
	require.Equal(t, testPolicyID, got.PolicyID)
	require.Equal(t, "integration:svc", got.SubjectID)
	require.Equal(t, "corr-1", got.Headers.CorrelationID)
	require.False(t, got.Headers.ResponseRequired)
}

func TestForwarderDeduplicatesSameCorrelationID(t *testing.T) {
	_, nc := lapsetest.StartEmbeddedNATS(t)
	cfg := DefaultConfig()

	fwd, err := NewForwarder(t.Context(), nc, cfg, lapsetest.NewTestLogger(t))
	require.NoError(t, err)
	defer fwd.Close()

	// Transport-level duplicates of the same send collapse.
	fwd.Tell(testCommand("corr-dup"))
	fwd.Tell(testCommand("corr-dup"))
	fwd.Close()

	require.Eventually(t, func() bool {
		return streamMsgCount(t, fwd, cfg) == 1
	}, 5*time.Second, 20*time.Millisecond)

	// A deliberate re-send with a fresh correlation id goes through.
	fwd2, err := NewForwarder(t.Context(), nc, cfg, lapsetest.NewTestLogger(t))
	require.NoError(t, err)
	defer fwd2.Close()

	fwd2.Tell(testCommand("corr-fresh"))
	require.Eventually(t, func() bool {
		return streamMsgCount(t, fwd2, cfg) == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestForwarderDropsAfterClose(t *testing.T) {
	_, nc := lapsetest.StartEmbeddedNATS(t)
	cfg := DefaultConfig()

	fwd, err := NewForwarder(t.Context(), nc, cfg, lapsetest.NewTestLogger(t))
	require.NoError(t, err)

	fwd.Close()
	fwd.Tell(testCommand("corr-late"))

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, streamMsgCount(t, fwd, cfg))
}
