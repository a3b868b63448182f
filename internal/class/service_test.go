package class

import (
	"context"
	"strings"
	"testing"

	"SchoolManager/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memClasses compares the natural key with strings.EqualFold, standing in
// for the strength-2 collation.
type memClasses map[primitive.ObjectID]*Class

func (m memClasses) FindByID(_ context.Context, id primitive.ObjectID) (*Class, error) {
	if c, ok := m[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m memClasses) CheckUnique(_ context.Context, name, section, year string, excludeID primitive.ObjectID) error {
	for id, c := range m {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(c.Name, name) && strings.EqualFold(c.Section, section) && strings.EqualFold(c.AcademicYear, year) {
			return apperr.DuplicateField("class")
		}
	}
	return nil
}

func (m memClasses) Create(_ context.Context, c *Class) error {
	cp := *c
	m[c.ID] = &cp
	return nil
}

func (m memClasses) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	c, ok := m[id]
	if !ok {
		return apperr.NotFound("class")
	}
	for k, v := range set {
		switch k {
		case "name":
			c.Name = v.(string)
		case "section":
			c.Section = v.(string)
		case "academicYear":
			c.AcademicYear = v.(string)
		case "capacity":
			c.Capacity = v.(int)
		case "classTeacher":
			c.ClassTeacher = v.(primitive.ObjectID)
		}
	}
	return nil
}

func (m memClasses) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m[id]; !ok {
		return apperr.NotFound("class")
	}
	delete(m, id)
	return nil
}

func (m memClasses) List(_ context.Context, _ ListFilter) ([]*Class, error) {
	out := []*Class{}
	for _, c := range m {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type teacherSet map[primitive.ObjectID]bool

func (t teacherSet) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	return t[id], nil
}

func newTestService() (*ClassService, memClasses, primitive.ObjectID) {
	teacher := primitive.NewObjectID()
	store := memClasses{}
	return NewClassService(store, teacherSet{teacher: true}, nil, zap.NewNop()), store, teacher
}

func TestCreateClassNormalizesSection(t *testing.T) {
	s, _, teacher := newTestService()
	c, err := s.Create(context.Background(), CreateRequest{
		Name: "10", Section: " a ", AcademicYear: "2024-2025", Capacity: 40, ClassTeacher: teacher.Hex(),
	}, primitive.NilObjectID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Section != "A" {
		t.Fatalf("section should be uppercased, got %q", c.Section)
	}
}

func TestCreateClassRejectsCaseInsensitiveDuplicate(t *testing.T) {
	s, _, teacher := newTestService()
	ctx := context.Background()
	req := CreateRequest{Name: "10", Section: "a", AcademicYear: "2024-2025", Capacity: 40, ClassTeacher: teacher.Hex()}
	if _, err := s.Create(ctx, req, primitive.NilObjectID); err != nil {
		t.Fatal(err)
	}
	req.Section = "A"
	_, err := s.Create(ctx, req, primitive.NilObjectID)
	if !apperr.Is(err, apperr.KindDuplicateField) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if err.Error() != "class already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCreateClassValidation(t *testing.T) {
	s, _, teacher := newTestService()
	base := CreateRequest{Name: "10", Section: "A", AcademicYear: "2024-2025", Capacity: 40, ClassTeacher: teacher.Hex()}

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		kind   apperr.Kind
	}{
		{"year not consecutive", func(r *CreateRequest) { r.AcademicYear = "2024-2026" }, apperr.KindValidation},
		{"year malformed", func(r *CreateRequest) { r.AcademicYear = "24-25" }, apperr.KindValidation},
		{"capacity zero", func(r *CreateRequest) { r.Capacity = 0 }, apperr.KindValidation},
		{"capacity too large", func(r *CreateRequest) { r.Capacity = 101 }, apperr.KindValidation},
		{"teacher malformed", func(r *CreateRequest) { r.ClassTeacher = "nope" }, apperr.KindInvalidReference},
		{"teacher unknown", func(r *CreateRequest) { r.ClassTeacher = primitive.NewObjectID().Hex() }, apperr.KindInvalidReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := s.Create(context.Background(), req, primitive.NilObjectID)
			if !apperr.Is(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}
}

func TestUpdateClassIsIdempotentAgainstItself(t *testing.T) {
	s, _, teacher := newTestService()
	ctx := context.Background()
	c, err := s.Create(ctx, CreateRequest{Name: "10", Section: "A", AcademicYear: "2024-2025", Capacity: 40, ClassTeacher: teacher.Hex()}, primitive.NilObjectID)
	if err != nil {
		t.Fatal(err)
	}

	name, section, year := "10", "a", "2024-2025"
	updated, err := s.Update(ctx, c.ID, UpdateRequest{Name: &name, Section: &section, AcademicYear: &year})
	if err != nil {
		t.Fatalf("unchanged update should succeed: %v", err)
	}
	if updated.Section != "A" {
		t.Fatalf("section should stay uppercased, got %q", updated.Section)
	}
}

func TestUpdateClassRejectsCollisionWithAnother(t *testing.T) {
	s, _, teacher := newTestService()
	ctx := context.Background()
	if _, err := s.Create(ctx, CreateRequest{Name: "10", Section: "A", AcademicYear: "2024-2025", Capacity: 40, ClassTeacher: teacher.Hex()}, primitive.NilObjectID); err != nil {
		t.Fatal(err)
	}
	b, err := s.Create(ctx, CreateRequest{Name: "10", Section: "B", AcademicYear: "2024-2025", Capacity: 40, ClassTeacher: teacher.Hex()}, primitive.NilObjectID)
	if err != nil {
		t.Fatal(err)
	}
	section := "a"
	if _, err := s.Update(ctx, b.ID, UpdateRequest{Section: &section}); !apperr.Is(err, apperr.KindDuplicateField) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestDeleteClass(t *testing.T) {
	s, store, teacher := newTestService()
	ctx := context.Background()
	c, err := s.Create(ctx, CreateRequest{Name: "9", Section: "C", AcademicYear: "2025-2026", Capacity: 30, ClassTeacher: teacher.Hex()}, primitive.NilObjectID)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if len(store) != 0 {
		t.Fatal("class not removed")
	}
	if err := s.Delete(ctx, c.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
