package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Model is a plain RBAC model: subjects are role names carried in the JWT.
const Model = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	RoleHead   = "HEAD"
	RoleViewer = "VIEWER"
)

// DefaultPolicies grants VIEWER read access and HEAD every write on top of
// what VIEWER can do.
var DefaultPolicies = [][]string{
	{RoleViewer, "employee", "read"},
	{RoleViewer, "leave", "read"},
	{RoleViewer, "dashboard", "read"},

	{RoleHead, "employee", "create"},
	{RoleHead, "employee", "update"},
	{RoleHead, "employee", "delete"},
	{RoleHead, "employee", "restore"},
	{RoleHead, "employee", "force_delete"},
	{RoleHead, "leave", "create"},
	{RoleHead, "leave", "update"},
	{RoleHead, "leave", "delete"},
}

var DefaultGroupings = [][]string{
	{RoleHead, RoleViewer},
}

func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(Model)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies(DefaultPolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(DefaultGroupings); err != nil {
		return nil, err
	}

	return e, nil
}
