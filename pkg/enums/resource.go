package enums

import "fmt"

// Resource names an entity class the access policy can gate.
type Resource string

const (
	ResourceProject        Resource = "project"
	ResourceContractor     Resource = "contractor"
	ResourceContract       Resource = "contract"
	ResourcePaymentRequest Resource = "payment_request"
	ResourceUser           Resource = "user"
)

var validResources = []Resource{
	ResourceProject,
	ResourceContractor,
	ResourceContract,
	ResourcePaymentRequest,
	ResourceUser,
}

// String implements fmt.Stringer.
func (r Resource) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Resource.
func (r Resource) IsValid() bool {
	for _, candidate := range validResources {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResource converts raw input into a Resource.
func ParseResource(value string) (Resource, error) {
	for _, candidate := range validResources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resource %q", value)
}

// Resources returns the closed set of policy-gated resources.
func Resources() []Resource {
	out := make([]Resource, len(validResources))
	copy(out, validResources)
	return out
}
