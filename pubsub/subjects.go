package pubsub

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// validateSubjectPrefix checks that a configured prefix consists of safe
// tokens separated by dots.
func validateSubjectPrefix(prefix string) error {
	for _, token := range strings.Split(prefix, ".") {
		if !isSafeToken(token) {
			return fmt.Errorf("invalid subject token %q", token)
		}
	}

	return nil
}

// subjectToken maps an arbitrary identifier to a single NATS subject token.
//
// Policy and subject ids routinely contain characters NATS subjects cannot
// carry (colons, slashes, spaces). Safe ids pass through unchanged for
// readability; anything else is replaced by its xxh3 hash. The mapping is
// stable, so publishers and subscribers derive the same token independently.
func subjectToken(id string) string {
	if isSafeToken(id) {
		return id
	}

	return fmt.Sprintf("x%016x", xxh3.HashString(id))
}

// isSafeToken reports whether s can be used verbatim as one NATS subject
// token: non-empty ASCII alphanumerics, dash and underscore only.
func isSafeToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}

	return true
}

// announcementSubject returns the subject announcements of one policy are
// published on.
func announcementSubject(prefix, policyID string) string {
	return prefix + "." + subjectToken(policyID)
}

// commandSubject returns the subject delete commands for one policy subject
// are published on.
func commandSubject(prefix, policyID, subjectID string) string {
	return prefix + "." + subjectToken(policyID) + "." + subjectToken(subjectID)
}

// eventSubject returns the subject deletion events of one policy are
// published on.
func eventSubject(prefix, policyID string) string {
	return prefix + "." + subjectToken(policyID)
}
