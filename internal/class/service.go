package class

import (
	"context"
	"strings"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/metrics"
	"SchoolManager/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Class, error)
	CheckUnique(ctx context.Context, name, section, academicYear string, excludeID primitive.ObjectID) error
	Create(ctx context.Context, c *Class) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter ListFilter) ([]*Class, error)
}

// TeacherChecker reports whether an id references an existing Faculty.
type TeacherChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type ClassService struct {
	repo     Store
	teachers TeacherChecker
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewClassService(repo Store, teachers TeacherChecker, m *metrics.Metrics, logger *zap.Logger) *ClassService {
	return &ClassService{repo: repo, teachers: teachers, metrics: m, logger: logger}
}

func (s *ClassService) resolveTeacher(ctx context.Context, hexID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hexID))
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidReference("classTeacher", "Invalid class teacher")
	}
	ok, err := s.teachers.Exists(ctx, id)
	if err != nil {
		return primitive.NilObjectID, apperr.Internal(err)
	}
	if !ok {
		return primitive.NilObjectID, apperr.InvalidReference("classTeacher", "Class teacher not found")
	}
	return id, nil
}

func checkCapacity(n int) error {
	if n < MinCapacity || n > MaxCapacity {
		return apperr.ValidationField("capacity", "capacity must be between %d and %d", MinCapacity, MaxCapacity)
	}
	return nil
}

func (s *ClassService) Create(ctx context.Context, req CreateRequest, createdBy primitive.ObjectID) (*Class, error) {
	name := strings.TrimSpace(req.Name)
	section := strings.ToUpper(strings.TrimSpace(req.Section))
	year := strings.TrimSpace(req.AcademicYear)
	switch {
	case name == "":
		return nil, apperr.ValidationField("name", "name is required")
	case section == "":
		return nil, apperr.ValidationField("section", "section is required")
	case !validation.IsAcademicYear(year):
		return nil, apperr.ValidationField("academicYear", "academicYear must look like 2024-2025")
	}
	if err := checkCapacity(req.Capacity); err != nil {
		return nil, err
	}
	teacher, err := s.resolveTeacher(ctx, req.ClassTeacher)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CheckUnique(ctx, name, section, year, primitive.NilObjectID); err != nil {
		s.metrics.DuplicateRejected("class")
		return nil, err
	}

	now := time.Now().UTC()
	c := &Class{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Section:      section,
		AcademicYear: year,
		Capacity:     req.Capacity,
		ClassTeacher: teacher,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if apperr.Is(err, apperr.KindDuplicateField) {
			s.metrics.DuplicateRejected("class")
		}
		return nil, err
	}
	s.logger.Info("class created", zap.String("classId", c.ID.Hex()), zap.String("name", c.Name), zap.String("section", c.Section))
	return c, nil
}

func (s *ClassService) Get(ctx context.Context, id primitive.ObjectID) (*Class, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if c == nil {
		return nil, apperr.NotFound("class")
	}
	return c, nil
}

func (s *ClassService) List(ctx context.Context, filter ListFilter) ([]*Class, error) {
	classes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return classes, nil
}

// Update merges the request onto the stored class and re-checks the natural
// key against every other class.
func (s *ClassService) Update(ctx context.Context, id primitive.ObjectID, req UpdateRequest) (*Class, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	name, section, year := cur.Name, cur.Section, cur.AcademicYear
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.ValidationField("name", "name is required")
		}
		set["name"] = name
	}
	if req.Section != nil {
		section = strings.ToUpper(strings.TrimSpace(*req.Section))
		if section == "" {
			return nil, apperr.ValidationField("section", "section is required")
		}
		set["section"] = section
	}
	if req.AcademicYear != nil {
		year = strings.TrimSpace(*req.AcademicYear)
		if !validation.IsAcademicYear(year) {
			return nil, apperr.ValidationField("academicYear", "academicYear must look like 2024-2025")
		}
		set["academicYear"] = year
	}
	if req.Capacity != nil {
		if err := checkCapacity(*req.Capacity); err != nil {
			return nil, err
		}
		set["capacity"] = *req.Capacity
	}
	if req.ClassTeacher != nil {
		teacher, err := s.resolveTeacher(ctx, *req.ClassTeacher)
		if err != nil {
			return nil, err
		}
		set["classTeacher"] = teacher
	}
	if len(set) == 0 {
		return cur, nil
	}

	if err := s.repo.CheckUnique(ctx, name, section, year, id); err != nil {
		s.metrics.DuplicateRejected("class")
		return nil, err
	}
	if err := s.repo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ClassService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		return apperr.Internal(err)
	}
	s.logger.Info("class deleted", zap.String("classId", id.Hex()))
	return nil
}
