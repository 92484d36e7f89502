package pubsub

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubjectToken(t *testing.T) {
	t.Run("safe ids pass through", func(t *testing.T) {
		require.Equal(t, "my-policy_1", subjectToken("my-policy_1"))
		require.Equal(t, "Abc123", subjectToken("Abc123"))
	})

	t.Run("unsafe ids are hashed", func(t *testing.T) {
		token := subjectToken("ns:policy/with spaces")
		require.True(t, strings.HasPrefix(token, "x"))
		require.Len(t, token, 17)
		require.NotContains(t, token, ":")
		require.NotContains(t, token, " ")
	})

	t.Run("hashing is stable", func(t *testing.T) {
		require.Equal(t, subjectToken("ns:policy"), subjectToken("ns:policy"))
	})

	t.Run("distinct ids get distinct tokens", func(t *testing.T) {
		require.NotEqual(t, subjectToken("ns:policy-a"), subjectToken("ns:policy-b"))
	})

	t.Run("empty id is hashed", func(t *testing.T) {
		require.True(t, strings.HasPrefix(subjectToken(""), "x"))
	})
}

func TestSubjectLayout(t *testing.T) {
	require.Equal(t, "lapse.announcements.pol", announcementSubject("lapse.announcements", "pol"))
	require.Equal(t, "lapse.commands.pol.sub", commandSubject("lapse.commands", "pol", "sub"))
	require.Equal(t, "lapse.events.pol", eventSubject("lapse.events", "pol"))

	// NATS-unsafe ids never leak separators into the subject.
	cmd := commandSubject("lapse.commands", "ns:policy", "integration:svc")
	require.Equal(t, 3, strings.Count(cmd, "."), "unexpected token count in %q", cmd)
}
