package faculty

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/auth"
	"SchoolManager/internal/config"
	"SchoolManager/internal/guard"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrIDCollision marks an insert rejected because the generated facultyId or
// employeeId is already taken.
var ErrIDCollision = errors.New("generated faculty id already taken")

var facultyIndexFields = map[string]string{
	config.IndexFacultyEmail:  "email",
	config.IndexFacultyMobile: "mobileNumber",
}

type FacultyRepository struct {
	collection *mongo.Collection
}

func NewFacultyRepository(db *mongo.Database) *FacultyRepository {
	return &FacultyRepository{collection: db.Collection(config.FacultiesCollection)}
}

func (r *FacultyRepository) findOne(ctx context.Context, filter bson.M) (*Faculty, error) {
	var f Faculty
	err := r.collection.FindOne(ctx, filter).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *FacultyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Faculty, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *FacultyRepository) FindByEmail(ctx context.Context, email string) (*Faculty, error) {
	return r.findOne(ctx, bson.M{"email": auth.NormalizeEmail(email)})
}

func (r *FacultyRepository) CheckUnique(ctx context.Context, email, mobile string, excludeID primitive.ObjectID) error {
	var keys []guard.Key
	if email != "" {
		keys = append(keys, guard.Key{Field: "email", Filter: bson.M{"email": auth.NormalizeEmail(email)}, ExcludeID: excludeID})
	}
	if mobile != "" {
		keys = append(keys, guard.Key{Field: "mobileNumber", Filter: bson.M{"mobileNumber": mobile}, ExcludeID: excludeID})
	}
	return guard.CheckAll(ctx, r.collection, keys...)
}

// Count is the basis of the id sequence.
func (r *FacultyRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *FacultyRepository) Create(ctx context.Context, f *Faculty) error {
	_, err := r.collection.InsertOne(ctx, f)
	if err == nil {
		return nil
	}
	switch guard.DuplicateIndex(err) {
	case config.IndexFacultyID, config.IndexEmployeeID:
		return fmt.Errorf("%w: %w", ErrIDCollision, err)
	}
	return guard.FromWriteError(err, facultyIndexFields)
}

func (r *FacultyRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return guard.FromWriteError(err, facultyIndexFields)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("faculty")
	}
	return nil
}

func (r *FacultyRepository) List(ctx context.Context, filter ListFilter) ([]*Faculty, error) {
	q := bson.M{}
	if filter.Department != "" {
		q["department"] = filter.Department
	}
	if filter.Active != nil {
		q["active"] = *filter.Active
	}
	opts := options.Find().SetSort(bson.D{{Key: "facultyId", Value: 1}}).SetCollation(config.CaseInsensitive)
	cursor, err := r.collection.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	faculties := []*Faculty{}
	if err := cursor.All(ctx, &faculties); err != nil {
		return nil, err
	}
	return faculties, nil
}
