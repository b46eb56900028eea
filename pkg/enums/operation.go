package enums

import "fmt"

// Operation names an action the access policy can grant on a resource.
type Operation string

const (
	OperationView     Operation = "view"
	OperationCreate   Operation = "create"
	OperationEdit     Operation = "edit"
	OperationDelete   Operation = "delete"
	OperationApprove  Operation = "approve"
	OperationMarkPaid Operation = "mark_paid"
)

var validOperations = []Operation{
	OperationView,
	OperationCreate,
	OperationEdit,
	OperationDelete,
	OperationApprove,
	OperationMarkPaid,
}

// String implements fmt.Stringer.
func (o Operation) String() string {
	return string(o)
}

// IsValid reports whether the value is a known Operation.
func (o Operation) IsValid() bool {
	for _, candidate := range validOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOperation converts raw input into an Operation.
func ParseOperation(value string) (Operation, error) {
	for _, candidate := range validOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation %q", value)
}

// Operations returns the closed set of policy operations.
func Operations() []Operation {
	out := make([]Operation, len(validOperations))
	copy(out, validOperations)
	return out
}
