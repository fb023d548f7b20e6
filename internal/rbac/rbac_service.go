package rbac

import (
	"sort"
	"strings"

	"github.com/Wakkzz12/employee-leave-tracker/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
	PermissionsFor(role string) (domain.RolePermissionsResponse, error)
}

type service struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

func NewService(enforcer *casbin.SyncedEnforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

func normalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	role := normalizeRole(req.Role)
	if role == "" {
		return false, nil
	}

	allowed, err := s.enforcer.Enforce(role, strings.TrimSpace(req.Resource), strings.TrimSpace(req.Action))
	if err != nil {
		s.logger.Error("casbin enforce failed", zap.String("role", role), zap.Error(err))
		return false, err
	}

	if !allowed {
		s.logger.Debug("rbac denied",
			zap.String("user_id", req.UserID),
			zap.String("role", role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
		)
	}
	return allowed, nil
}

// PermissionsFor includes permissions inherited from parent roles.
func (s *service) PermissionsFor(role string) (domain.RolePermissionsResponse, error) {
	role = normalizeRole(role)
	resp := domain.RolePermissionsResponse{Role: role, Permissions: []domain.PermissionResponse{}}
	if role == "" {
		return resp, nil
	}

	rules, err := s.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		s.logger.Error("load implicit permissions failed", zap.String("role", role), zap.Error(err))
		return resp, err
	}

	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		resp.Permissions = append(resp.Permissions, domain.PermissionResponse{Resource: rule[1], Action: rule[2]})
	}

	sort.Slice(resp.Permissions, func(i, j int) bool {
		a, b := resp.Permissions[i], resp.Permissions[j]
		if a.Resource != b.Resource {
			return a.Resource < b.Resource
		}
		return a.Action < b.Action
	})
	return resp, nil
}
