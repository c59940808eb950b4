package domain

import "time"

// Channel identifies how a submission entered the system.
type Channel int16

const (
	ChannelAPI     Channel = 1
	ChannelOnline  Channel = 2
	ChannelOffline Channel = 3
)

// SubmissionStatus enumerates lifecycle states for submissions.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusAccepted SubmissionStatus = "accepted"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is one ingested payload. OwnerID is set for the online and
// offline channels; the API channel carries a free-text ProviderName instead.
// Status follows ValidationErrors: non-empty means rejected, empty after
// validation means accepted. Unvalidated content (.csv uploads) stays pending.
type Submission struct {
	ID               string
	ExternalKey      string
	Channel          Channel
	OwnerID          *string
	ProviderName     *string
	Payload          map[string]any
	FileName         *string
	RawFileKey       *string
	Status           SubmissionStatus
	ValidationErrors map[string]string
	SubmittedAt      time.Time
	ValidatedAt      *time.Time
}

// Rejected reports whether validation failed for this submission.
func (s *Submission) Rejected() bool {
	return len(s.ValidationErrors) > 0
}
