package role

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

var roleIndexFields = map[string]string{config.IndexRoleName: "name"}

type RoleRepository struct {
	collection *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{collection: db.Collection(config.RolesCollection)}
}

func (r *RoleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Role, error) {
	var role Role
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// CheckUnique compares names case-insensitively, like the backing index.
func (r *RoleRepository) CheckUnique(ctx context.Context, name string, excludeID primitive.ObjectID) error {
	return guard.Check(ctx, r.collection, guard.Key{
		Field:     "name",
		Filter:    bson.M{"name": name},
		ExcludeID: excludeID,
		Collation: config.CaseInsensitive,
	})
}

func (r *RoleRepository) Create(ctx context.Context, role *Role) error {
	_, err := r.collection.InsertOne(ctx, role)
	return guard.FromWriteError(err, roleIndexFields)
}

func (r *RoleRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return guard.FromWriteError(err, roleIndexFields)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("role")
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context, activeOnly bool) ([]*Role, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	roles := []*Role{}
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
