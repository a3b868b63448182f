package class

import (
	"context"
	"errors"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/config"
	"SchoolManager/internal/guard"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var classIndexFields = map[string]string{
	config.IndexClassNaturalKey: "class",
}

type ClassRepository struct {
	collection *mongo.Collection
}

func NewClassRepository(db *mongo.Database) *ClassRepository {
	return &ClassRepository{collection: db.Collection(config.ClassesCollection)}
}

func (r *ClassRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Class, error) {
	var c Class
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// CheckUnique uses the collation of the compound index so that "10/a" and
// "10/A" collide here exactly as they would on insert.
func (r *ClassRepository) CheckUnique(ctx context.Context, name, section, academicYear string, excludeID primitive.ObjectID) error {
	return guard.Check(ctx, r.collection, guard.Key{
		Field:     "class",
		Filter:    bson.M{"name": name, "section": section, "academicYear": academicYear},
		ExcludeID: excludeID,
		Collation: config.CaseInsensitive,
	})
}

func (r *ClassRepository) Create(ctx context.Context, c *Class) error {
	_, err := r.collection.InsertOne(ctx, c)
	return guard.FromWriteError(err, classIndexFields)
}

func (r *ClassRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return guard.FromWriteError(err, classIndexFields)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("class")
	}
	return nil
}

func (r *ClassRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("class")
	}
	return nil
}

func (r *ClassRepository) List(ctx context.Context, filter ListFilter) ([]*Class, error) {
	q := bson.M{}
	if filter.AcademicYear != "" {
		q["academicYear"] = filter.AcademicYear
	}
	if !filter.ClassTeacher.IsZero() {
		q["classTeacher"] = filter.ClassTeacher
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "academicYear", Value: -1},
		{Key: "name", Value: 1},
		{Key: "section", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	classes := []*Class{}
	if err := cursor.All(ctx, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}
