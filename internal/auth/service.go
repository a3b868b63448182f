package auth

import (
	"context"
	"strings"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/config"
	"SchoolManager/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the credential store as seen by the services.
type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByEmailAndRole(ctx context.Context, email string, role Role) (*User, error)
	CheckUnique(ctx context.Context, email, mobile string, excludeID primitive.ObjectID) error
	CreateUser(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, clearFirstLogin bool) error
	UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) error
	List(ctx context.Context, role Role) ([]*User, error)
}

type UserService struct {
	repo       Store
	issuer     *TokenIssuer
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(repo Store, issuer *TokenIssuer, cfg *config.AppConfig, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, issuer: issuer, bcryptCost: cfg.BcryptCost, logger: logger}
}

func (s *UserService) Issuer() *TokenIssuer { return s.issuer }

// ClaimsFor builds the base claims for a user. Callers add session context
// such as the faculty reference before issuing.
func ClaimsFor(u *User) Claims {
	return Claims{
		UserID: u.ID.Hex(),
		Role:   u.Role,
		Name:   u.FullName(),
		Email:  u.Email,
	}
}

func (s *UserService) Hash(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, apperr.ValidationField("email", "email is required")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperr.ValidationField("password", "password must be at least %d characters", MinPasswordLength)
	}
	if err := s.repo.CheckUnique(ctx, email, "", primitive.NilObjectID); err != nil {
		return nil, err
	}

	hash, err := s.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	now := time.Now().UTC()
	user := &User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(ClaimsFor(user))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info("user signed up", zap.String("userId", user.ID.Hex()))
	return &SignupResponse{Token: token, UserID: user.ID.Hex()}, nil
}

// Authenticate checks a credential. When role is non-empty only users holding
// that role are considered.
func (s *UserService) Authenticate(ctx context.Context, email, password string, role Role) (*User, error) {
	var (
		user *User
		err  error
	)
	if role == "" {
		user, err = s.repo.FindByEmail(ctx, email)
	} else {
		user, err = s.repo.FindByEmailAndRole(ctx, email, role)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthenticated("Invalid Credentials")
	}
	if !user.Active {
		return nil, apperr.Unauthenticated("Account is deactivated")
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, cred Credential) (*LoginResponse, error) {
	user, err := s.Authenticate(ctx, cred.Email, cred.Password, "")
	if err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(ClaimsFor(user))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResponse{Token: token, User: user}, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req ChangePasswordRequest, policy PasswordPolicy) error {
	if len(req.NewPassword) < MinPasswordLength {
		return apperr.ValidationField("newPassword", "new password must be at least %d characters", MinPasswordLength)
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("user")
	}
	if !CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperr.ValidationField("currentPassword", "current password is incorrect")
	}
	for _, rejected := range policy.Rejected {
		if req.NewPassword == rejected {
			return apperr.ValidationField("newPassword", "new password cannot be the default password")
		}
	}
	if req.NewPassword == req.CurrentPassword {
		return apperr.ValidationField("newPassword", "new password must differ from the current password")
	}

	hash, err := s.Hash(req.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash, policy.ClearFirstLogin); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("userId", userID.Hex()))
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, role Role) ([]*User, error) {
	if role != "" && !role.Valid() {
		return nil, apperr.ValidationField("role", "unknown role %q", role)
	}
	return s.repo.List(ctx, role)
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

// UpdateUser edits profile fields. The mobile number goes through the
// uniqueness guard, excluding the user being edited.
func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, req UpdateUserRequest) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	var unset []string
	if req.FirstName != nil {
		set["firstName"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		set["lastName"] = strings.TrimSpace(*req.LastName)
	}
	if req.MobileNumber != nil {
		mobile := strings.TrimSpace(*req.MobileNumber)
		if mobile == "" {
			unset = append(unset, "mobileNumber")
		} else {
			if !validation.IsMobile(mobile) {
				return nil, apperr.ValidationField("mobileNumber", "mobileNumber must be a valid mobile number")
			}
			if err := s.repo.CheckUnique(ctx, "", mobile, id); err != nil {
				return nil, err
			}
			set["mobileNumber"] = mobile
		}
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, apperr.ValidationField("role", "unknown role %q", *req.Role)
		}
		// A faculty user is paired with its Faculty profile; only the faculty
		// endpoints change its role or status.
		if (user.Role == RoleFaculty) != (*req.Role == RoleFaculty) {
			return nil, apperr.ValidationField("role", "faculty accounts are managed through /api/faculty")
		}
		set["role"] = *req.Role
	}
	if req.Active != nil {
		if user.Role == RoleFaculty {
			return nil, apperr.ValidationField("active", "faculty accounts are managed through /api/faculty")
		}
		set["active"] = *req.Active
	}
	if len(set) == 0 && len(unset) == 0 {
		return user, nil
	}
	if err := s.repo.UpdateFields(ctx, id, set, unset); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// EnsureAdmin creates an admin account or promotes an existing user.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, firstName, lastName string) (*User, bool, error) {
	email = NormalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if err := s.repo.UpdateFields(ctx, existing.ID, bson.M{"role": RoleAdmin, "active": true}, nil); err != nil {
			return nil, false, err
		}
		existing.Role = RoleAdmin
		existing.Active = true
		return existing, false, nil
	}
	if len(password) < MinPasswordLength {
		return nil, false, apperr.ValidationField("password", "password must be at least %d characters", MinPasswordLength)
	}
	hash, err := s.Hash(password)
	if err != nil {
		return nil, false, err
	}
	now := time.Now().UTC()
	user := &User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
