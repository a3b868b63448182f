package class

import (
	"context"
	"os"
	"testing"
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// testDatabase connects to MONGO_TEST_URI and returns a throwaway database
// with the production indexes.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("sms_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	if err := config.EnsureIndexes(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}

func TestRepositoryCaseInsensitiveNaturalKey(t *testing.T) {
	repo := NewClassRepository(testDatabase(t))
	ctx := context.Background()

	first := &Class{ID: primitive.NewObjectID(), Name: "10", Section: "a", AcademicYear: "2024-2025", Capacity: 40}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.CheckUnique(ctx, "10", "A", "2024-2025", primitive.NilObjectID); !apperr.Is(err, apperr.KindDuplicateField) {
		t.Fatalf("guard should see the case-insensitive duplicate, got %v", err)
	}
	if err := repo.CheckUnique(ctx, "10", "A", "2024-2025", first.ID); err != nil {
		t.Fatalf("guard should exclude the class itself, got %v", err)
	}

	// Past the guard, the index still rejects it with the same error.
	second := &Class{ID: primitive.NewObjectID(), Name: "10", Section: "A", AcademicYear: "2024-2025", Capacity: 40}
	err := repo.Create(ctx, second)
	if !apperr.Is(err, apperr.KindDuplicateField) {
		t.Fatalf("index should reject the duplicate, got %v", err)
	}
}
