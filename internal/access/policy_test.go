package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
)

// expectedGrants lists, per role, every permitted (resource, operation)
// pair. The exhaustive test below checks every other combination is denied.
var expectedGrants = map[enums.Role]map[enums.Resource][]enums.Operation{
	enums.RoleSuperadmin: {
		enums.ResourceProject:        {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
		enums.ResourceContractor:     {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
		enums.ResourceContract:       {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
		enums.ResourcePaymentRequest: {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete, enums.OperationApprove, enums.OperationMarkPaid},
		enums.ResourceUser:           {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
	},
	enums.RoleHQAdmin: {
		enums.ResourceProject:        {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
		enums.ResourceContractor:     {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
		enums.ResourceContract:       {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
		enums.ResourcePaymentRequest: {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete, enums.OperationApprove, enums.OperationMarkPaid},
		enums.ResourceUser:           {enums.OperationView, enums.OperationCreate, enums.OperationEdit, enums.OperationDelete},
	},
	enums.RoleHQAccountant: {
		enums.ResourceProject:        {enums.OperationView},
		enums.ResourceContractor:     {enums.OperationView},
		enums.ResourceContract:       {enums.OperationView},
		enums.ResourcePaymentRequest: {enums.OperationView, enums.OperationApprove, enums.OperationMarkPaid},
	},
	enums.RoleSitePM: {
		enums.ResourceProject:        {enums.OperationView, enums.OperationCreate},
		enums.ResourceContractor:     {enums.OperationView, enums.OperationCreate},
		enums.ResourceContract:       {enums.OperationView, enums.OperationCreate},
		enums.ResourcePaymentRequest: {enums.OperationView, enums.OperationCreate},
	},
	enums.RoleSiteAccountant: {
		enums.ResourceProject:        {enums.OperationView},
		enums.ResourceContractor:     {enums.OperationView},
		enums.ResourceContract:       {enums.OperationView},
		enums.ResourcePaymentRequest: {enums.OperationView, enums.OperationCreate},
	},
}

func isExpected(role enums.Role, resource enums.Resource, op enums.Operation) bool {
	ops, ok := expectedGrants[role][resource]
	if !ok {
		return false
	}
	for _, allowed := range ops {
		if allowed == op {
			return true
		}
	}
	return false
}

func TestCanMatchesMatrixExhaustively(t *testing.T) {
	for _, role := range enums.Roles() {
		for _, resource := range enums.Resources() {
			for _, op := range enums.Operations() {
				want := isExpected(role, resource, op)
				got := Can(role, resource, op)
				assert.Equalf(t, want, got, "%s / %s / %s", role, resource, op)
			}
		}
	}
}

func TestCanDeniesUnknownInputs(t *testing.T) {
	assert.False(t, Can(enums.Role("Intern"), enums.ResourceProject, enums.OperationView))
	assert.False(t, Can(enums.RoleSuperadmin, enums.Resource("invoice"), enums.OperationView))
	assert.False(t, Can(enums.RoleSuperadmin, enums.ResourceProject, enums.Operation("archive")))
	assert.False(t, Can("", "", ""))
}

func TestApproveRestrictedToHQRoles(t *testing.T) {
	approvers := map[enums.Role]bool{
		enums.RoleSuperadmin:   true,
		enums.RoleHQAdmin:      true,
		enums.RoleHQAccountant: true,
	}
	for _, role := range enums.Roles() {
		got := Can(role, enums.ResourcePaymentRequest, enums.OperationApprove)
		assert.Equalf(t, approvers[role], got, "approve for %s", role)

		got = Can(role, enums.ResourcePaymentRequest, enums.OperationMarkPaid)
		assert.Equalf(t, approvers[role], got, "mark paid for %s", role)
	}
}

func TestUserManagementRestrictedToAdmins(t *testing.T) {
	for _, role := range []enums.Role{enums.RoleHQAccountant, enums.RoleSitePM, enums.RoleSiteAccountant} {
		for _, op := range enums.Operations() {
			assert.Falsef(t, Can(role, enums.ResourceUser, op), "%s should have no user rights (%s)", role, op)
		}
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	actor := Actor{Role: enums.RoleSitePM, Username: "pm1"}

	err := Require(actor, enums.ResourcePaymentRequest, enums.OperationApprove)
	assert.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	assert.NoError(t, Require(actor, enums.ResourcePaymentRequest, enums.OperationCreate))
}
