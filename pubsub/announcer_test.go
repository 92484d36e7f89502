package pubsub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	lapsetest "github.com/policyforge/lapse/testing"
	"github.com/policyforge/lapse/types"
)

const testPolicyID = types.PolicyID("ns:test-policy")

func testAnnouncement(labels []types.AckLabel, timeout time.Duration) *types.SubjectDeletionAnnouncement {
	return &types.SubjectDeletionAnnouncement{
		PolicyID:   testPolicyID,
		DeleteAt:   time.Now().Add(time.Minute),
		SubjectIDs: []string{"integration:svc"},
		Headers: types.Headers{
			CorrelationID: "corr-1",
			AckRequests:   labels,
			Timeout:       timeout,
		},
	}
}

func TestAnnouncerPublish(t *testing.T) {
	_, nc := lapsetest.StartEmbeddedNATS(t)
	cfg := DefaultConfig()
	announcer := NewAnnouncer(nc, cfg, lapsetest.NewTestLogger(t))

	received := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(announcementSubject(cfg.AnnouncementPrefix, testPolicyID.String()), received)
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	ann := testAnnouncement(nil, 0)
	require.NoError(t, announcer.Publish(t.Context(), ann))

	select {
	case msg := <-received:
		var got types.SubjectDeletionAnnouncement
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		require.Equal(t, testPolicyID, got.PolicyID)
		require.Equal(t, []string{"integration:svc"}, got.SubjectIDs)
		require.Empty(t, msg.Reply, "fire-and-forget announcements carry no reply inbox")
	case <-time.After(2 * time.Second):
		t.Fatal("announcement not received")
	}
}

func TestAnnouncerPublishWithAcks(t *testing.T) {
	_, nc := lapsetest.StartEmbeddedNATS(t)
	cfg := DefaultConfig()
	announcer := NewAnnouncer(nc, cfg, lapsetest.NewTestLogger(t))

	// Consumer acknowledging the "connection:ack" label.
	sub, err := announcer.Subscribe(testPolicyID, func(ann *types.SubjectDeletionAnnouncement) types.Acknowledgements {
		return types.Acknowledgements{
			{Label: "connection:ack", Status: types.StatusOK},
		}
	})
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	replyTo := make(chan types.AckResult, 1)
	announcer.PublishWithAcks(t.Context(), testAnnouncement([]types.AckLabel{"connection:ack"}, 5*time.Second), replyTo)

	select {
	case res := <-replyTo:
		require.Nil(t, res.Err)
		require.Len(t, res.Acks, 1)
		require.Equal(t, types.AckLabel("connection:ack"), res.Acks[0].Label)
		require.Equal(t, types.StatusOK, res.Acks[0].Status)
		require.False(t, res.Acks.RequiresRedelivery())
	case <-time.After(5 * time.Second):
		t.Fatal("no ack result delivered")
	}
}

func TestAnnouncerFillsInMissingLabels(t *testing.T) {
	_, nc := lapsetest.StartEmbeddedNATS(t)
	cfg := DefaultConfig()
	announcer := NewAnnouncer(nc, cfg, lapsetest.NewTestLogger(t))

	// Only one of the two requested labels answers.
	sub, err := announcer.Subscribe(testPolicyID, func(ann *types.SubjectDeletionAnnouncement) types.Acknowledgements {
		return types.Acknowledgements{
			{Label: "connection:ack", Status: types.StatusOK},
		}
	})
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	labels := []types.AckLabel{"connection:ack", "search:index"}
	replyTo := make(chan types.AckResult, 1)
	announcer.PublishWithAcks(t.Context(), testAnnouncement(labels, 300*time.Millisecond), replyTo)

	select {
	case res := <-replyTo:
		require.Nil(t, res.Err)
		require.Len(t, res.Acks, 2)

		byLabel := make(map[types.AckLabel]int, len(res.Acks))
		for _, ack := range res.Acks {
			byLabel[ack.Label] = ack.Status
		}
		require.Equal(t, types.StatusOK, byLabel["connection:ack"])
		require.Equal(t, types.StatusRequestTimeout, byLabel["search:index"])

		// The silent label makes the whole round retryable.
		require.True(t, res.Acks.RequiresRedelivery())
	case <-time.After(5 * time.Second):
		t.Fatal("no ack result delivered")
	}
}

func TestAnnouncerNoSubscribersTimesOut(t *testing.T) {
	_, nc := lapsetest.StartEmbeddedNATS(t)
	cfg := DefaultConfig()
	announcer := NewAnnouncer(nc, cfg, lapsetest.NewTestLogger(t))

	replyTo := make(chan types.AckResult, 1)
	announcer.PublishWithAcks(t.Context(), testAnnouncement([]types.AckLabel{"connection:ack"}, 200*time.Millisecond), replyTo)

	select {
	case res := <-replyTo:
		require.Nil(t, res.Err)
		require.Len(t, res.Acks, 1)
		require.Equal(t, types.StatusRequestTimeout, res.Acks[0].Status)
	case <-time.After(5 * time.Second):
		t.Fatal("no ack result delivered")
	}
}

func TestAnnouncerAckTimeoutCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAckTimeout = time.Second
	announcer := NewAnnouncer(nil, cfg, nil)

	require.Equal(t, time.Second, announcer.ackTimeout(0))
	require.Equal(t, time.Second, announcer.ackTimeout(time.Minute))
	require.Equal(t, 200*time.Millisecond, announcer.ackTimeout(200*time.Millisecond))
}
