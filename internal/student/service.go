package student

import (
	"context"
	"strings"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/auth"
	"SchoolManager/internal/metrics"
	"SchoolManager/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Student, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*Student, error)
	CheckUnique(ctx context.Context, userID primitive.ObjectID, email, mobile string, excludeID primitive.ObjectID) error
	Create(ctx context.Context, s *Student) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	List(ctx context.Context, active *bool) ([]*Student, error)
}

// UserFinder resolves the User a Student links to.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error)
}

type StudentService struct {
	repo    Store
	users   UserFinder
	auth    *auth.UserService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewStudentService(repo Store, users UserFinder, authService *auth.UserService, m *metrics.Metrics, logger *zap.Logger) *StudentService {
	return &StudentService{repo: repo, users: users, auth: authService, metrics: m, logger: logger}
}

func (s *StudentService) resolveUser(ctx context.Context, hexID string) (*auth.User, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hexID))
	if err != nil {
		return nil, apperr.InvalidReference("userId", "Invalid user")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if u == nil {
		return nil, apperr.InvalidReference("userId", "User not found")
	}
	if u.Role != auth.RoleStudent {
		return nil, apperr.InvalidReference("userId", "User is not a student")
	}
	return u, nil
}

func (s *StudentService) Create(ctx context.Context, req CreateRequest, createdBy primitive.ObjectID) (*Student, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	email := auth.NormalizeEmail(req.Email)
	mobile := strings.TrimSpace(req.MobileNumber)
	switch {
	case first == "":
		return nil, apperr.ValidationField("firstName", "firstName is required")
	case last == "":
		return nil, apperr.ValidationField("lastName", "lastName is required")
	case email == "":
		return nil, apperr.ValidationField("email", "email is required")
	case !validation.IsMobile(mobile):
		return nil, apperr.ValidationField("mobileNumber", "mobileNumber must be a valid mobile number")
	}

	u, err := s.resolveUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CheckUnique(ctx, u.ID, email, mobile, primitive.NilObjectID); err != nil {
		s.metrics.DuplicateRejected("student")
		return nil, err
	}

	now := time.Now().UTC()
	st := &Student{
		ID:           primitive.NewObjectID(),
		UserID:       u.ID,
		FirstName:    first,
		LastName:     last,
		Email:        email,
		MobileNumber: mobile,
		Active:       true,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		if apperr.Is(err, apperr.KindDuplicateField) {
			s.metrics.DuplicateRejected("student")
		}
		return nil, err
	}
	s.logger.Info("student created", zap.String("studentId", st.ID.Hex()), zap.String("userId", u.ID.Hex()))
	return st, nil
}

func (s *StudentService) Get(ctx context.Context, id primitive.ObjectID) (*Student, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if st == nil {
		return nil, apperr.NotFound("student")
	}
	return st, nil
}

func (s *StudentService) List(ctx context.Context, active *bool) ([]*Student, error) {
	students, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return students, nil
}

func (s *StudentService) Update(ctx context.Context, id primitive.ObjectID, req UpdateRequest) (*Student, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	var email, mobile string
	if req.FirstName != nil {
		v := strings.TrimSpace(*req.FirstName)
		if v == "" {
			return nil, apperr.ValidationField("firstName", "firstName is required")
		}
		set["firstName"] = v
	}
	if req.LastName != nil {
		v := strings.TrimSpace(*req.LastName)
		if v == "" {
			return nil, apperr.ValidationField("lastName", "lastName is required")
		}
		set["lastName"] = v
	}
	if req.Email != nil {
		email = auth.NormalizeEmail(*req.Email)
		if email == "" {
			return nil, apperr.ValidationField("email", "email is required")
		}
		set["email"] = email
	}
	if req.MobileNumber != nil {
		mobile = strings.TrimSpace(*req.MobileNumber)
		if !validation.IsMobile(mobile) {
			return nil, apperr.ValidationField("mobileNumber", "mobileNumber must be a valid mobile number")
		}
		set["mobileNumber"] = mobile
	}
	if len(set) == 0 {
		return cur, nil
	}
	if err := s.repo.CheckUnique(ctx, primitive.NilObjectID, email, mobile, id); err != nil {
		s.metrics.DuplicateRejected("student")
		return nil, err
	}
	if err := s.repo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *StudentService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*Student, error) {
	if err := s.repo.Update(ctx, id, bson.M{"active": active}); err != nil {
		return nil, err
	}
	s.logger.Info("student status changed", zap.String("studentId", id.Hex()), zap.Bool("active", active))
	return s.Get(ctx, id)
}

// Login authenticates a student account. The User must hold the student role
// and its Student profile must exist and be active.
func (s *StudentService) Login(ctx context.Context, cred auth.Credential) (*LoginResponse, error) {
	user, err := s.auth.Authenticate(ctx, cred.Email, cred.Password, auth.RoleStudent)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if st == nil {
		return nil, apperr.Unauthenticated("Invalid Credentials")
	}
	if !st.Active {
		return nil, apperr.Unauthenticated("Account is deactivated")
	}
	token, err := s.auth.Issuer().Issue(auth.ClaimsFor(user))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResponse{Token: token, Student: st}, nil
}
