package student

import (
	"context"
	"errors"
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

var studentIndexFields = map[string]string{
	config.IndexStudentEmail:  "email",
	config.IndexStudentMobile: "mobileNumber",
	config.IndexStudentUser:   "userId",
}

type StudentRepository struct {
	collection *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{collection: db.Collection(config.StudentsCollection)}
}

func (r *StudentRepository) findOne(ctx context.Context, filter bson.M) (*Student, error) {
	var s Student
	err := r.collection.FindOne(ctx, filter).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Student, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *StudentRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*Student, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

// CheckUnique guards the linked user, email and mobile number. Zero and
// empty values are skipped.
func (r *StudentRepository) CheckUnique(ctx context.Context, userID primitive.ObjectID, email, mobile string, excludeID primitive.ObjectID) error {
	var keys []guard.Key
	if !userID.IsZero() {
		keys = append(keys, guard.Key{Field: "userId", Filter: bson.M{"userId": userID}, ExcludeID: excludeID})
	}
	if email != "" {
		keys = append(keys, guard.Key{Field: "email", Filter: bson.M{"email": auth.NormalizeEmail(email)}, ExcludeID: excludeID})
	}
	if mobile != "" {
		keys = append(keys, guard.Key{Field: "mobileNumber", Filter: bson.M{"mobileNumber": mobile}, ExcludeID: excludeID})
	}
	return guard.CheckAll(ctx, r.collection, keys...)
}

func (r *StudentRepository) Create(ctx context.Context, s *Student) error {
	_, err := r.collection.InsertOne(ctx, s)
	return guard.FromWriteError(err, studentIndexFields)
}

func (r *StudentRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return guard.FromWriteError(err, studentIndexFields)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("student")
	}
	return nil
}

func (r *StudentRepository) List(ctx context.Context, active *bool) ([]*Student, error) {
	filter := bson.M{}
	if active != nil {
		filter["active"] = *active
	}
	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	students := []*Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}
