package faculty

import (
	"context"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/auth"
	"SchoolManager/internal/config"
	"SchoolManager/internal/role"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type FacultyService struct {
	faculties       Store
	roles           role.Finder
	users           *auth.UserService
	defaultPassword string
	logger          *zap.Logger
}

func NewFacultyService(faculties Store, roles role.Finder, users *auth.UserService, cfg *config.AppConfig, logger *zap.Logger) *FacultyService {
	return &FacultyService{
		faculties:       faculties,
		roles:           roles,
		users:           users,
		defaultPassword: cfg.DefaultFacultyPassword,
		logger:          logger,
	}
}

// view populates the Role. A dangling role reference yields a nil Role rather
// than an error so the profile stays readable.
func (s *FacultyService) view(ctx context.Context, f *Faculty) (*View, error) {
	rl, err := s.roles.FindByID(ctx, f.RoleID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &View{Faculty: f, Role: rl}, nil
}

func (s *FacultyService) Get(ctx context.Context, id primitive.ObjectID) (*View, error) {
	f, err := s.faculties.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if f == nil {
		return nil, apperr.NotFound("faculty")
	}
	return s.view(ctx, f)
}

// Exists reports whether id references a Faculty. Classes use it to validate
// their class teacher.
func (s *FacultyService) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	f, err := s.faculties.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return f != nil, nil
}

func (s *FacultyService) List(ctx context.Context, filter ListFilter) ([]*View, error) {
	faculties, err := s.faculties.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	roles := map[primitive.ObjectID]*role.Role{}
	views := make([]*View, 0, len(faculties))
	for _, f := range faculties {
		rl, ok := roles[f.RoleID]
		if !ok {
			rl, err = s.roles.FindByID(ctx, f.RoleID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			roles[f.RoleID] = rl
		}
		views = append(views, &View{Faculty: f, Role: rl})
	}
	return views, nil
}

// Login authenticates a faculty account. The User must hold the faculty role
// and the Faculty profile must be active. The token carries the faculty id
// and role name for display; authorization never reads them.
func (s *FacultyService) Login(ctx context.Context, cred auth.Credential) (*LoginResponse, error) {
	user, err := s.users.Authenticate(ctx, cred.Email, cred.Password, auth.RoleFaculty)
	if err != nil {
		return nil, err
	}
	f, err := s.faculties.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if f == nil {
		s.logger.Warn("faculty user without profile", zap.String("userId", user.ID.Hex()))
		return nil, apperr.Unauthenticated("Invalid Credentials")
	}
	if !f.Active {
		return nil, apperr.Unauthenticated("Account is deactivated")
	}
	v, err := s.view(ctx, f)
	if err != nil {
		return nil, err
	}

	claims := auth.ClaimsFor(user)
	claims.FacultyID = f.FacultyID
	if v.Role != nil {
		claims.RoleName = v.Role.Name
	}
	token, err := s.users.Issuer().Issue(claims)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResponse{Token: token, Faculty: v, FirstLogin: user.FirstLogin}, nil
}

// ChangePassword refuses the default password and clears the first-login flag.
func (s *FacultyService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req auth.ChangePasswordRequest) error {
	return s.users.ChangePassword(ctx, userID, req, auth.PasswordPolicy{
		Rejected:        []string{s.defaultPassword},
		ClearFirstLogin: true,
	})
}
