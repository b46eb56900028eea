package access

import (
	"fmt"

	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
)

type grant struct {
	role      enums.Role
	resource  enums.Resource
	operation enums.Operation
}

// permissionMatrix is the single source of truth for role permissions.
// Any (role, resource, operation) triple not listed here is denied.
var permissionMatrix = buildMatrix()

func buildMatrix() map[grant]struct{} {
	m := make(map[grant]struct{})

	crud := []enums.Operation{
		enums.OperationView,
		enums.OperationCreate,
		enums.OperationEdit,
		enums.OperationDelete,
	}

	// Superadmin and HQ Admin hold full rights everywhere, including the
	// payment approval chain and user management.
	for _, role := range []enums.Role{enums.RoleSuperadmin, enums.RoleHQAdmin} {
		for _, resource := range enums.Resources() {
			for _, op := range crud {
				allow(m, role, resource, op)
			}
		}
		allow(m, role, enums.ResourcePaymentRequest, enums.OperationApprove)
		allow(m, role, enums.ResourcePaymentRequest, enums.OperationMarkPaid)
	}

	// HQ Accountant reads everything except users and owns the payment
	// approval chain.
	for _, resource := range []enums.Resource{
		enums.ResourceProject,
		enums.ResourceContractor,
		enums.ResourceContract,
		enums.ResourcePaymentRequest,
	} {
		allow(m, enums.RoleHQAccountant, resource, enums.OperationView)
	}
	allow(m, enums.RoleHQAccountant, enums.ResourcePaymentRequest, enums.OperationApprove)
	allow(m, enums.RoleHQAccountant, enums.ResourcePaymentRequest, enums.OperationMarkPaid)

	// Site PM can view and create within assigned projects. Row scoping is
	// enforced separately by the repositories.
	for _, resource := range []enums.Resource{
		enums.ResourceProject,
		enums.ResourceContractor,
		enums.ResourceContract,
		enums.ResourcePaymentRequest,
	} {
		allow(m, enums.RoleSitePM, resource, enums.OperationView)
		allow(m, enums.RoleSitePM, resource, enums.OperationCreate)
	}

	// Site Accountant views assigned project data and submits payment
	// requests. No create rights on projects, contractors, or contracts.
	for _, resource := range []enums.Resource{
		enums.ResourceProject,
		enums.ResourceContractor,
		enums.ResourceContract,
		enums.ResourcePaymentRequest,
	} {
		allow(m, enums.RoleSiteAccountant, resource, enums.OperationView)
	}
	allow(m, enums.RoleSiteAccountant, enums.ResourcePaymentRequest, enums.OperationCreate)

	return m
}

func allow(m map[grant]struct{}, role enums.Role, resource enums.Resource, op enums.Operation) {
	m[grant{role: role, resource: resource, operation: op}] = struct{}{}
}

// Can reports whether the role may perform the operation on the resource.
// It never errors; unknown combinations are denied.
func Can(role enums.Role, resource enums.Resource, op enums.Operation) bool {
	_, ok := permissionMatrix[grant{role: role, resource: resource, operation: op}]
	return ok
}

// Require returns a forbidden error unless the actor's role permits the
// operation on the resource.
func Require(actor Actor, resource enums.Resource, op enums.Operation) error {
	if Can(actor.Role, resource, op) {
		return nil
	}
	return pkgerrors.New(
		pkgerrors.CodeForbidden,
		fmt.Sprintf("%s is not allowed to %s %s", actor.Role, op, resource),
	)
}
