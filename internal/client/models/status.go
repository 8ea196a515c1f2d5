// Package models defines the data shapes shared by the docchat client:
// identity, profile, chat, citation, document and admin records, plus the
// status enums used by the session store.
package models

// Status tracks a fetch lifecycle: idle → loading → succeeded | failed.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ActionStatus tracks an admin mutation: idle → pending → succeeded | failed.
type ActionStatus string

const (
	ActionIdle      ActionStatus = "idle"
	ActionPending   ActionStatus = "pending"
	ActionSucceeded ActionStatus = "succeeded"
	ActionFailed    ActionStatus = "failed"
)
