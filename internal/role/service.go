package role

import (
	"context"
	"strings"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Finder resolves a role by id.
type Finder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Role, error)
}

type Store interface {
	Finder
	CheckUnique(ctx context.Context, name string, excludeID primitive.ObjectID) error
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	List(ctx context.Context, activeOnly bool) ([]*Role, error)
}

type RoleService struct {
	repo    Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRoleService(repo Store, m *metrics.Metrics, logger *zap.Logger) *RoleService {
	return &RoleService{repo: repo, metrics: m, logger: logger}
}

func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest, createdBy primitive.ObjectID) (*Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.ValidationField("name", "name is required")
	}
	if err := s.repo.CheckUnique(ctx, name, primitive.NilObjectID); err != nil {
		s.metrics.DuplicateRejected("role")
		return nil, err
	}
	now := time.Now().UTC()
	role := &Role{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	s.logger.Info("role created", zap.String("roleId", role.ID.Hex()), zap.String("name", role.Name))
	return role, nil
}

func (s *RoleService) Get(ctx context.Context, id primitive.ObjectID) (*Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if role == nil {
		return nil, apperr.NotFound("role")
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context, activeOnly bool) ([]*Role, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *RoleService) Update(ctx context.Context, id primitive.ObjectID, req UpdateRoleRequest) (*Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.ValidationField("name", "name is required")
		}
		if err := s.repo.CheckUnique(ctx, name, id); err != nil {
			s.metrics.DuplicateRejected("role")
			return nil, err
		}
		set["name"] = name
	}
	if req.Description != nil {
		set["description"] = strings.TrimSpace(*req.Description)
	}
	if len(set) == 0 {
		return role, nil
	}
	if err := s.repo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetActive toggles a role. Faculty referencing a deactivated role keep the
// reference; only new registrations and edits are refused.
func (s *RoleService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*Role, error) {
	if err := s.repo.Update(ctx, id, bson.M{"active": active}); err != nil {
		return nil, err
	}
	s.logger.Info("role status changed", zap.String("roleId", id.Hex()), zap.Bool("active", active))
	return s.Get(ctx, id)
}

// ResolveActive looks up a role by its hex id and fails with
// apperr.KindInvalidRole when the id is malformed, unknown, or inactive.
func ResolveActive(ctx context.Context, roles Finder, hexID string) (*Role, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, apperr.InvalidRole("Invalid role")
	}
	role, err := roles.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if role == nil {
		return nil, apperr.InvalidRole("Role not found")
	}
	if !role.Active {
		return nil, apperr.InvalidRole("Role is inactive")
	}
	return role, nil
}
