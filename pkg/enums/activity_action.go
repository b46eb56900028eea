package enums

import "fmt"

// ActivityAction labels the kind of mutation an activity log entry records.
type ActivityAction string

const (
	ActivityActionCreate   ActivityAction = "create"
	ActivityActionUpdate   ActivityAction = "update"
	ActivityActionDelete   ActivityAction = "delete"
	ActivityActionApprove  ActivityAction = "approve"
	ActivityActionReject   ActivityAction = "reject"
	ActivityActionMarkPaid ActivityAction = "mark_paid"
	ActivityActionLogin    ActivityAction = "login"
)

var validActivityActions = []ActivityAction{
	ActivityActionCreate,
	ActivityActionUpdate,
	ActivityActionDelete,
	ActivityActionApprove,
	ActivityActionReject,
	ActivityActionMarkPaid,
	ActivityActionLogin,
}

// String implements fmt.Stringer.
func (a ActivityAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityAction.
func (a ActivityAction) IsValid() bool {
	for _, candidate := range validActivityActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityAction converts raw input into an ActivityAction.
func ParseActivityAction(value string) (ActivityAction, error) {
	for _, candidate := range validActivityActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity action %q", value)
}
