package student

import (
	"context"
	"testing"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/auth"
	"SchoolManager/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memUsers map[primitive.ObjectID]*auth.User

func (m memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*auth.User, error) {
	if u, ok := m[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range m {
		if u.Email == auth.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memUsers) FindByEmailAndRole(ctx context.Context, email string, role auth.Role) (*auth.User, error) {
	u, err := m.FindByEmail(ctx, email)
	if u == nil || err != nil || u.Role != role {
		return nil, err
	}
	return u, nil
}

func (m memUsers) CheckUnique(context.Context, string, string, primitive.ObjectID) error { return nil }

func (m memUsers) CreateUser(_ context.Context, u *auth.User) error {
	m[u.ID] = u
	return nil
}

func (m memUsers) UpdatePassword(context.Context, primitive.ObjectID, string, bool) error { return nil }

func (m memUsers) UpdateFields(context.Context, primitive.ObjectID, bson.M, []string) error {
	return nil
}

func (m memUsers) List(context.Context, auth.Role) ([]*auth.User, error) { return nil, nil }

type memStudents map[primitive.ObjectID]*Student

func (m memStudents) FindByID(_ context.Context, id primitive.ObjectID) (*Student, error) {
	if s, ok := m[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m memStudents) FindByUserID(_ context.Context, userID primitive.ObjectID) (*Student, error) {
	for _, s := range m {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memStudents) CheckUnique(_ context.Context, userID primitive.ObjectID, email, mobile string, excludeID primitive.ObjectID) error {
	for id, s := range m {
		if id == excludeID {
			continue
		}
		switch {
		case !userID.IsZero() && s.UserID == userID:
			return apperr.DuplicateField("userId")
		case email != "" && s.Email == email:
			return apperr.DuplicateField("email")
		case mobile != "" && s.MobileNumber == mobile:
			return apperr.DuplicateField("mobileNumber")
		}
	}
	return nil
}

func (m memStudents) Create(_ context.Context, s *Student) error {
	cp := *s
	m[s.ID] = &cp
	return nil
}

func (m memStudents) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	s, ok := m[id]
	if !ok {
		return apperr.NotFound("student")
	}
	for k, v := range set {
		switch k {
		case "firstName":
			s.FirstName = v.(string)
		case "lastName":
			s.LastName = v.(string)
		case "email":
			s.Email = v.(string)
		case "mobileNumber":
			s.MobileNumber = v.(string)
		case "active":
			s.Active = v.(bool)
		}
	}
	return nil
}

func (m memStudents) List(_ context.Context, active *bool) ([]*Student, error) {
	out := []*Student{}
	for _, s := range m {
		if active == nil || s.Active == *active {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fixture struct {
	service  *StudentService
	users    memUsers
	students memStudents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.AppConfig{JWTKey: []byte("k"), TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}
	users := memUsers{}
	students := memStudents{}
	authService := auth.NewUserService(users, auth.NewTokenIssuer(cfg), cfg, zap.NewNop())
	return &fixture{
		service:  NewStudentService(students, users, authService, nil, zap.NewNop()),
		users:    users,
		students: students,
	}
}

func (f *fixture) addUser(t *testing.T, email string, role auth.Role) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &auth.User{ID: primitive.NewObjectID(), Email: email, PasswordHash: hash, Role: role, Active: true}
	f.users[u.ID] = u
	return u
}

func createRequest(userID primitive.ObjectID, email, mobile string) CreateRequest {
	return CreateRequest{UserID: userID.Hex(), FirstName: "Ravi", LastName: "Kumar", Email: email, MobileNumber: mobile}
}

func TestCreateStudentRequiresStudentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plain := f.addUser(t, "plain@school.edu", auth.RoleUser)

	cases := map[string]string{
		"malformed":  "xyz",
		"unknown":    primitive.NewObjectID().Hex(),
		"wrong role": plain.ID.Hex(),
	}
	for name, userID := range cases {
		t.Run(name, func(t *testing.T) {
			req := CreateRequest{UserID: userID, FirstName: "A", LastName: "B", Email: "a@b.com", MobileNumber: "9000000001"}
			if _, err := f.service.Create(ctx, req, primitive.NilObjectID); !apperr.Is(err, apperr.KindInvalidReference) {
				t.Fatalf("expected InvalidReference, got %v", err)
			}
		})
	}
}

func TestCreateStudentGuardsUniqueFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.addUser(t, "s1@school.edu", auth.RoleStudent)
	u2 := f.addUser(t, "s2@school.edu", auth.RoleStudent)

	if _, err := f.service.Create(ctx, createRequest(u1.ID, "S1@school.edu", "9000000001"), primitive.NilObjectID); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		req   CreateRequest
		field string
	}{
		{createRequest(u1.ID, "other@school.edu", "9000000002"), "userId"},
		{createRequest(u2.ID, "s1@school.edu", "9000000002"), "email"},
		{createRequest(u2.ID, "s2@school.edu", "9000000001"), "mobileNumber"},
	}
	for _, tc := range cases {
		_, err := f.service.Create(ctx, tc.req, primitive.NilObjectID)
		if !apperr.Is(err, apperr.KindDuplicateField) || err.Error() != tc.field+" already exists" {
			t.Fatalf("expected duplicate %s, got %v", tc.field, err)
		}
	}
}

func TestUpdateStudentExcludesItself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.addUser(t, "s1@school.edu", auth.RoleStudent)
	st, err := f.service.Create(ctx, createRequest(u.ID, "s1@school.edu", "9000000001"), primitive.NilObjectID)
	if err != nil {
		t.Fatal(err)
	}
	email, mobile := "s1@school.edu", "9000000001"
	if _, err := f.service.Update(ctx, st.ID, UpdateRequest{Email: &email, MobileNumber: &mobile}); err != nil {
		t.Fatalf("unchanged update should succeed: %v", err)
	}
}

func TestStudentLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.addUser(t, "s1@school.edu", auth.RoleStudent)
	cred := auth.Credential{Email: "s1@school.edu", Password: "secret1"}

	if _, err := f.service.Login(ctx, cred); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("login without profile should fail, got %v", err)
	}

	st, err := f.service.Create(ctx, createRequest(u.ID, "s1@school.edu", "9000000001"), primitive.NilObjectID)
	if err != nil {
		t.Fatal(err)
	}
	res, err := f.service.Login(ctx, cred)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Student.ID != st.ID || res.Token == "" {
		t.Fatalf("unexpected login response %+v", res)
	}

	if _, err := f.service.SetActive(ctx, st.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.Login(ctx, cred); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("inactive student login should fail, got %v", err)
	}

	f.addUser(t, "faculty@school.edu", auth.RoleFaculty)
	if _, err := f.service.Login(ctx, auth.Credential{Email: "faculty@school.edu", Password: "secret1"}); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("non-student login should fail, got %v", err)
	}
}
