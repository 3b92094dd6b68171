package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵：买家、商家、管理员。
// 对象路径已去掉 /api/v1 前缀，与 NormalizeObject 一致。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "user",
			Policies: []Policy{
				{Object: "/users/*", Action: "*"},
				{Object: "/cart", Action: "*"},
				{Object: "/cart/*", Action: "*"},
				{Object: "/checkout", Action: "POST"},
				{Object: "/checkout/*", Action: "*"},
				{Object: "/orders", Action: "GET"},
				{Object: "/orders/*", Action: "*"},
				{Object: "/reviews", Action: "POST"},
				{Object: "/reviews/*", Action: "POST"},
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/*", Action: "*"},
				{Object: "/vendors/apply", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "vendor",
			Inherits: []string{"user"},
			Policies: []Policy{
				{Object: "/vendor/*", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "admin",
			Inherits: []string{"user"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，重复执行幂等。
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
