package lapse

import (
	"time"

	"github.com/google/uuid"
	"github.com/policyforge/lapse/types"
)

// buildAnnouncement produces the deletion announcement for one subject at a
// given deleteAt instant. Deterministic for fixed inputs except for the
// freshly generated correlation id, so every (re)publication is individually
// traceable and consumers can deduplicate retries.
func buildAnnouncement(policyID types.PolicyID, subject *types.Subject, deleteAt time.Time) *types.SubjectDeletionAnnouncement {
	headers := types.Headers{
		CorrelationID: uuid.NewString(),
	}
	if subject.Announcement != nil {
		headers.AckRequests = subject.Announcement.RequestedAckLabels
		headers.Timeout = subject.Announcement.RequestedAcksTimeout
	}

	return &types.SubjectDeletionAnnouncement{
		PolicyID:   policyID,
		DeleteAt:   deleteAt,
		SubjectIDs: []string{subject.ID},
		Headers:    headers,
	}
}

// buildDeleteCommand produces the delete command for the owned subject.
// Response-required is false: the controller never waits for a direct reply,
// confirmation arrives as a subject-deleted event. The correlation id doubles
// as the transport-level deduplication id for re-sends.
func buildDeleteCommand(policyID types.PolicyID, subject *types.Subject) *types.DeleteExpiredSubject {
	return &types.DeleteExpiredSubject{
		PolicyID:  policyID,
		SubjectID: subject.ID,
		Headers: types.Headers{
			CorrelationID:    uuid.NewString(),
			ResponseRequired: false,
		},
	}
}
