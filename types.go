package lapse

import "github.com/policyforge/lapse/types"

// Re-export types from the types subpackage.
//
// This file provides a stable, backward-compatible public API for the
// library's core types and interfaces. It uses type aliases to re-export
// definitions from the `types` subpackage, which contains the actual
// implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `lapse`
// package, while still providing a convenient `lapse.Subject`,
// `lapse.Logger`, etc. for users.
type (
	State                       = types.State
	PolicyID                    = types.PolicyID
	AckLabel                    = types.AckLabel
	Subject                     = types.Subject
	SubjectAnnouncement         = types.SubjectAnnouncement
	Headers                     = types.Headers
	SubjectDeletionAnnouncement = types.SubjectDeletionAnnouncement
	DeleteExpiredSubject        = types.DeleteExpiredSubject
	SubjectDeletedEvent         = types.SubjectDeletedEvent
	Acknowledgement             = types.Acknowledgement
	Acknowledgements            = types.Acknowledgements
	AnnouncementError           = types.AnnouncementError
	AckResult                   = types.AckResult
)

// Re-export interfaces from the types subpackage for convenience.
type (
	AnnouncementPub  = types.AnnouncementPub
	CommandForwarder = types.CommandForwarder
	Logger           = types.Logger
	Clock            = types.Clock
	MetricsCollector = types.MetricsCollector
)

// Re-export State constants from the types subpackage.
const (
	StateToAnnounce    = types.StateToAnnounce
	StateToAcknowledge = types.StateToAcknowledge
	StateToDelete      = types.StateToDelete
	StateDeleted       = types.StateDeleted
	StateStopped       = types.StateStopped
)
