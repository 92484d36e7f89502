package types

// State represents the lifecycle state of a subject expiry controller.
//
// States follow a defined progression during normal operation:
//
//	StateToAnnounce → StateToAcknowledge → StateToDelete → StateDeleted
//
// Subjects without a pre-expiry announcement skip directly to StateToDelete.
// A subject observed deleted while an announcement is still owed may move
// from StateToDelete or StateDeleted back to StateToAnnounce.
type State int

const (
	// StateToAnnounce indicates the controller is waiting for the
	// announcement instant of the subject.
	StateToAnnounce State = iota

	// StateToAcknowledge indicates an announcement has been published and
	// the controller is waiting for the aggregated acknowledgement result.
	StateToAcknowledge

	// StateToDelete indicates the controller is waiting for the subject's
	// expiry instant.
	StateToDelete

	// StateDeleted indicates the delete command has been forwarded and the
	// controller is waiting for the deletion confirmation.
	StateDeleted

	// StateStopped is the terminal state after the controller has shut down.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateToAnnounce:
		return "ToAnnounce"
	case StateToAcknowledge:
		return "ToAcknowledge"
	case StateToDelete:
		return "ToDelete"
	case StateDeleted:
		return "Deleted"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
