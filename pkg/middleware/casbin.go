package middleware

import (
	"net/http"

	"SchoolManager/internal/auth"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

const (
	readOnly  = "^(GET|HEAD)$"
	readWrite = "^(GET|HEAD|POST|PUT|PATCH|DELETE)$"
)

// Rule grants a role access to a path pattern for the methods matched by
// Methods (a regular expression).
type Rule struct {
	Role    auth.Role
	Path    string
	Methods string
}

// Policy is the route-level access table for the /api group. Roles are
// taken from the closed auth.Role set.
var Policy = []Rule{
	{auth.RoleAdmin, "/api/*", readWrite},

	{auth.RoleFaculty, "/api/classes", readOnly},
	{auth.RoleFaculty, "/api/classes/:id", readOnly},
	{auth.RoleFaculty, "/api/students", readOnly},
	{auth.RoleFaculty, "/api/students/:id", readOnly},

	{auth.RoleFaculty, "/api/profile", readOnly},
	{auth.RoleStudent, "/api/profile", readOnly},
	{auth.RoleUser, "/api/profile", readOnly},
}

// NewEnforcer builds a casbin enforcer from the in-code model and rules.
func NewEnforcer(rules []Rule) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	policies := make([][]string, 0, len(rules))
	for _, r := range rules {
		policies = append(policies, []string{r.Role.String(), r.Path, r.Methods})
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// NewDefaultEnforcer is the fx provider for the route policy.
func NewDefaultEnforcer() (*casbin.Enforcer, error) {
	return NewEnforcer(Policy)
}

// Authorize enforces the route policy for the authenticated role. It must
// run after Authenticate.
func Authorize(enforcer *casbin.Enforcer, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := auth.IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing Token"})
			}
			obj := c.Request().URL.Path
			act := c.Request().Method
			allowed, err := enforcer.Enforce(identity.Role.String(), obj, act)
			if err != nil {
				logger.Error("casbin enforce", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
			}
			if !allowed {
				logger.Debug("casbin denied", zap.String("role", identity.Role.String()), zap.String("obj", obj), zap.String("act", act))
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
			}
			return next(c)
		}
	}
}
