package types

import (
	"encoding/json"
	"fmt"
)

// HTTP-style status codes used in acknowledgements. Only the codes the
// redelivery predicate cares about are named; consumers are free to reply
// with any status.
const (
	StatusOK               = 200
	StatusNoContent        = 204
	StatusBadRequest       = 400
	StatusNotFound         = 404
	StatusRequestTimeout   = 408
	StatusFailedDependency = 424
	StatusInternalError    = 500
	StatusServiceUnavail   = 503
)

// Acknowledgement is a single consumer's response to an announcement.
type Acknowledgement struct {
	Label         AckLabel        `json:"label"`
	Status        int             `json:"status"`
	CorrelationID string          `json:"correlation-id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Acknowledgements is the aggregated result of one announcement's
// acknowledgement collection.
type Acknowledgements []Acknowledgement

// RequiresRedelivery reports whether any contained acknowledgement carries a
// status that demands republishing the announcement.
func (a Acknowledgements) RequiresRedelivery() bool {
	for _, ack := range a {
		if RequiresRedelivery(ack.Status) {
			return true
		}
	}

	return false
}

// RequiresRedelivery reports whether an acknowledgement status is transient:
// request timeout, failed dependency, or any server error. All other
// statuses are terminal for the announcement attempt.
func RequiresRedelivery(status int) bool {
	if status == StatusRequestTimeout || status == StatusFailedDependency {
		return true
	}

	return status >= 500 && status < 600
}

// AnnouncementError describes an acknowledgement aggregation failure with an
// HTTP-style status. Transient statuses feed the controller's retry rule.
type AnnouncementError struct {
	Status        int
	Message       string
	CorrelationID string
}

// Error implements the error interface.
func (e *AnnouncementError) Error() string {
	return fmt.Sprintf("announcement failed with status %d: %s", e.Status, e.Message)
}

// AckResult is the single event an acknowledgement aggregator delivers back
// to the controller: either the aggregated acknowledgements or an error.
type AckResult struct {
	Acks Acknowledgements
	Err  *AnnouncementError
}
