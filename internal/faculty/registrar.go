package faculty

import (
	"context"
	"errors"
	"strings"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/auth"
	"SchoolManager/internal/config"
	"SchoolManager/internal/metrics"
	"SchoolManager/internal/role"
	"SchoolManager/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the faculty collection as seen by the registrar.
type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Faculty, error)
	FindByEmail(ctx context.Context, email string) (*Faculty, error)
	CheckUnique(ctx context.Context, email, mobile string, excludeID primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, f *Faculty) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	List(ctx context.Context, filter ListFilter) ([]*Faculty, error)
}

// TxRunner runs fn in a multi-document transaction. The context passed to fn
// must be used for every write that belongs to the transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Registrar creates and edits Faculty profiles together with their linked
// login User, atomically.
type Registrar struct {
	faculties       Store
	users           auth.Store
	roles           role.Finder
	tx              TxRunner
	defaultPassword string
	bcryptCost      int
	maxAttempts     int
	now             func() time.Time
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

func NewRegistrar(faculties Store, users auth.Store, roles role.Finder, tx TxRunner, cfg *config.AppConfig, m *metrics.Metrics, logger *zap.Logger) *Registrar {
	attempts := cfg.FacultyIDAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Registrar{
		faculties:       faculties,
		users:           users,
		roles:           roles,
		tx:              tx,
		defaultPassword: cfg.DefaultFacultyPassword,
		bcryptCost:      cfg.BcryptCost,
		maxAttempts:     attempts,
		now:             time.Now,
		metrics:         m,
		logger:          logger,
	}
}

func normalizeRegistration(in RegisterRequest) RegisterRequest {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = auth.NormalizeEmail(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.Gender = Gender(strings.ToLower(strings.TrimSpace(string(in.Gender))))
	in.Department = strings.TrimSpace(in.Department)
	in.Role = strings.TrimSpace(in.Role)
	return in
}

func validateRegistration(in RegisterRequest) error {
	switch {
	case in.FirstName == "":
		return apperr.ValidationField("firstName", "firstName is required")
	case in.LastName == "":
		return apperr.ValidationField("lastName", "lastName is required")
	case in.Email == "":
		return apperr.ValidationField("email", "email is required")
	case !validation.IsMobile(in.MobileNumber):
		return apperr.ValidationField("mobileNumber", "mobileNumber must be a valid mobile number")
	case !in.Gender.Valid():
		return apperr.ValidationField("gender", "gender must be one of [male female other]")
	case !validation.IsDepartment(in.Department):
		return apperr.ValidationField("department", "department may only contain letters, spaces, '&', '.' and '-'")
	}
	return nil
}

// Register creates a Faculty and its login User in one transaction and
// returns the profile with its Role populated plus the default credential.
//
// Email and mobile number are checked against both collections and the role
// is resolved before the transaction opens. Inside it the role is resolved
// again, the id sequence is derived from the faculty count, and both
// documents are inserted. Any failure aborts the transaction; nothing is
// left behind. An id collision restarts the transaction with the next
// sequence number, up to maxAttempts times.
func (r *Registrar) Register(ctx context.Context, in RegisterRequest, createdBy primitive.ObjectID) (*Registration, error) {
	in = normalizeRegistration(in)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	if err := r.users.CheckUnique(ctx, in.Email, in.MobileNumber, primitive.NilObjectID); err != nil {
		return nil, r.reject(err)
	}
	if err := r.faculties.CheckUnique(ctx, in.Email, in.MobileNumber, primitive.NilObjectID); err != nil {
		return nil, r.reject(err)
	}
	rl, err := role.ResolveActive(ctx, r.roles, in.Role)
	if err != nil {
		return nil, r.reject(err)
	}

	hash, err := auth.HashPassword(r.defaultPassword, r.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var created *Faculty
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		created, err = r.registerOnce(ctx, in, hash, createdBy, int64(attempt))
		if err == nil || !errors.Is(err, ErrIDCollision) {
			break
		}
		r.metrics.FacultyIDRetried()
		r.logger.Warn("faculty id collision, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	if err != nil {
		if errors.Is(err, ErrIDCollision) {
			r.metrics.FacultyRegistered("duplicate_id")
			return nil, apperr.DuplicateID(err)
		}
		return nil, r.reject(err)
	}

	r.metrics.FacultyRegistered("created")
	r.logger.Info("faculty registered",
		zap.String("facultyId", created.FacultyID),
		zap.String("employeeId", created.EmployeeID),
		zap.String("userId", created.UserID.Hex()),
	)
	return &Registration{
		Faculty:     &View{Faculty: created, Role: rl},
		Credentials: DefaultCredential{Email: created.Email, Password: r.defaultPassword},
	}, nil
}

func (r *Registrar) registerOnce(ctx context.Context, in RegisterRequest, hash string, createdBy primitive.ObjectID, attempt int64) (*Faculty, error) {
	var created *Faculty
	err := r.tx.WithTransaction(ctx, func(tx context.Context) error {
		roleDoc, err := role.ResolveActive(tx, r.roles, in.Role)
		if err != nil {
			return err
		}
		n, err := r.faculties.Count(tx)
		if err != nil {
			return err
		}
		now := r.now().UTC()
		facultyID, employeeID := GenerateIDs(now.Year(), in.Department, n+1+attempt)

		f := &Faculty{
			ID:           primitive.NewObjectID(),
			FacultyID:    facultyID,
			EmployeeID:   employeeID,
			UserID:       primitive.NewObjectID(),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Email:        in.Email,
			MobileNumber: in.MobileNumber,
			Gender:       in.Gender,
			Department:   in.Department,
			RoleID:       roleDoc.ID,
			Active:       true,
			CreatedBy:    createdBy,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.faculties.Create(tx, f); err != nil {
			return err
		}
		u := &auth.User{
			ID:           f.UserID,
			Email:        f.Email,
			PasswordHash: hash,
			FirstName:    f.FirstName,
			LastName:     f.LastName,
			MobileNumber: f.MobileNumber,
			Role:         auth.RoleFaculty,
			Active:       true,
			FirstLogin:   true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.users.CreateUser(tx, u); err != nil {
			return err
		}
		created = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// reject passes taxonomy errors through and turns anything else into
// TransactionAborted.
func (r *Registrar) reject(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		switch ae.Kind {
		case apperr.KindDuplicateField:
			r.metrics.DuplicateRejected("faculty")
			r.metrics.FacultyRegistered("duplicate")
		case apperr.KindInvalidRole:
			r.metrics.FacultyRegistered("invalid_role")
		default:
			r.metrics.FacultyRegistered("rejected")
		}
		return err
	}
	r.metrics.FacultyRegistered("aborted")
	return apperr.TransactionAborted(err)
}

// Update edits a Faculty. Email and mobile go through the uniqueness guard
// against both collections, the effective role must be active, and the
// linked User is updated in the same transaction so both keep the same
// email. facultyId and employeeId never change.
func (r *Registrar) Update(ctx context.Context, id primitive.ObjectID, in UpdateRequest) (*View, error) {
	cur, err := r.faculties.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if cur == nil {
		return nil, apperr.NotFound("faculty")
	}

	set := bson.M{}
	userSet := bson.M{}
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" {
			return nil, apperr.ValidationField("firstName", "firstName is required")
		}
		set["firstName"], userSet["firstName"] = v, v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if v == "" {
			return nil, apperr.ValidationField("lastName", "lastName is required")
		}
		set["lastName"], userSet["lastName"] = v, v
	}
	var email, mobile string
	if in.Email != nil {
		email = auth.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, apperr.ValidationField("email", "email is required")
		}
		set["email"], userSet["email"] = email, email
	}
	if in.MobileNumber != nil {
		mobile = strings.TrimSpace(*in.MobileNumber)
		if !validation.IsMobile(mobile) {
			return nil, apperr.ValidationField("mobileNumber", "mobileNumber must be a valid mobile number")
		}
		set["mobileNumber"], userSet["mobileNumber"] = mobile, mobile
	}
	if in.Gender != nil {
		g := Gender(strings.ToLower(strings.TrimSpace(string(*in.Gender))))
		if !g.Valid() {
			return nil, apperr.ValidationField("gender", "gender must be one of [male female other]")
		}
		set["gender"] = g
	}
	if in.Department != nil {
		d := strings.TrimSpace(*in.Department)
		if !validation.IsDepartment(d) {
			return nil, apperr.ValidationField("department", "department may only contain letters, spaces, '&', '.' and '-'")
		}
		set["department"] = d
	}

	roleHex := cur.RoleID.Hex()
	if in.Role != nil {
		roleHex = strings.TrimSpace(*in.Role)
	}
	rl, err := role.ResolveActive(ctx, r.roles, roleHex)
	if err != nil {
		return nil, err
	}
	if rl.ID != cur.RoleID {
		set["role"] = rl.ID
	}

	if err := r.users.CheckUnique(ctx, email, mobile, cur.UserID); err != nil {
		r.metrics.DuplicateRejected("faculty")
		return nil, err
	}
	if err := r.faculties.CheckUnique(ctx, email, mobile, cur.ID); err != nil {
		r.metrics.DuplicateRejected("faculty")
		return nil, err
	}

	if len(set) > 0 {
		err = r.tx.WithTransaction(ctx, func(tx context.Context) error {
			if err := r.faculties.Update(tx, id, set); err != nil {
				return err
			}
			if len(userSet) == 0 {
				return nil
			}
			return r.users.UpdateFields(tx, cur.UserID, userSet, nil)
		})
		if err != nil {
			if apperr.KindOf(err) != apperr.KindInternal {
				return nil, err
			}
			return nil, apperr.TransactionAborted(err)
		}
	}

	updated, err := r.faculties.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &View{Faculty: updated, Role: rl}, nil
}

// SetActive activates or deactivates a Faculty and its login together.
func (r *Registrar) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*Faculty, error) {
	cur, err := r.faculties.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if cur == nil {
		return nil, apperr.NotFound("faculty")
	}
	err = r.tx.WithTransaction(ctx, func(tx context.Context) error {
		if err := r.faculties.Update(tx, id, bson.M{"active": active}); err != nil {
			return err
		}
		return r.users.UpdateFields(tx, cur.UserID, bson.M{"active": active}, nil)
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.TransactionAborted(err)
	}
	cur.Active = active
	r.logger.Info("faculty status changed", zap.String("facultyId", cur.FacultyID), zap.Bool("active", active))
	return cur, nil
}
