package auth

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

var userIndexFields = map[string]string{
	config.IndexUserEmail:  "email",
	config.IndexUserMobile: "mobileNumber",
}

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(config.UsersCollection)}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (r *UserRepository) FindByEmailAndRole(ctx context.Context, email string, role Role) (*User, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email), "role": role})
}

// CheckUnique guards email and mobile number. Empty values are skipped.
func (r *UserRepository) CheckUnique(ctx context.Context, email, mobile string, excludeID primitive.ObjectID) error {
	var keys []guard.Key
	if email != "" {
		keys = append(keys, guard.Key{Field: "email", Filter: bson.M{"email": NormalizeEmail(email)}, ExcludeID: excludeID})
	}
	if mobile != "" {
		keys = append(keys, guard.Key{Field: "mobileNumber", Filter: bson.M{"mobileNumber": mobile}, ExcludeID: excludeID})
	}
	return guard.CheckAll(ctx, r.collection, keys...)
}

func (r *UserRepository) CreateUser(ctx context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, user)
	return guard.FromWriteError(err, userIndexFields)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, clearFirstLogin bool) error {
	set := bson.M{"password": hash, "updatedAt": time.Now().UTC()}
	if clearFirstLogin {
		set["firstLogin"] = false
	}
	return r.update(ctx, id, set, nil)
}

// UpdateFields applies a $set and, when unset is non-empty, an $unset.
func (r *UserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) error {
	set["updatedAt"] = time.Now().UTC()
	return r.update(ctx, id, set, unset)
}

func (r *UserRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) error {
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return guard.FromWriteError(err, userIndexFields)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, role Role) ([]*User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	users := []*User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ErrUserNotFound is returned by updates that match no user.
var ErrUserNotFound = apperr.NotFound("user")
