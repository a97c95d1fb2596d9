package enums

import "fmt"

// ResourceKind tags the three quota-governed actions.
type ResourceKind string

const (
	ResourceProposal  ResourceKind = "proposal"
	ResourceContract  ResourceKind = "contract"
	ResourceAIMessage ResourceKind = "ai_message"
)

var validResourceKinds = []ResourceKind{
	ResourceProposal,
	ResourceContract,
	ResourceAIMessage,
}

// String implements fmt.Stringer.
func (r ResourceKind) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ResourceKind.
func (r ResourceKind) IsValid() bool {
	for _, candidate := range validResourceKinds {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResourceKind converts raw input into a ResourceKind.
func ParseResourceKind(value string) (ResourceKind, error) {
	for _, candidate := range validResourceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resource kind %q", value)
}

// ResourceKinds returns every known kind in declaration order.
func ResourceKinds() []ResourceKind {
	kinds := make([]ResourceKind, len(validResourceKinds))
	copy(kinds, validResourceKinds)
	return kinds
}
