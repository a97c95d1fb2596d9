package enums

import "fmt"

// ProposalStatus tracks where a commercial proposal sits in its lifecycle.
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

var validProposalStatuses = []ProposalStatus{
	ProposalStatusDraft,
	ProposalStatusSent,
	ProposalStatusAccepted,
	ProposalStatusRejected,
}

// String implements fmt.Stringer.
func (p ProposalStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProposalStatus.
func (p ProposalStatus) IsValid() bool {
	for _, candidate := range validProposalStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProposalStatus converts raw input into a ProposalStatus.
func ParseProposalStatus(value string) (ProposalStatus, error) {
	for _, candidate := range validProposalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid proposal status %q", value)
}
