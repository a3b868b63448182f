// Package guard turns natural-key uniqueness into clean, field-specific
// errors. A pre-write Check produces the message; the unique index is what
// actually enforces the constraint, and FromWriteError maps an index
// violation that raced past the check onto the same error.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"SchoolManager/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter is the subset of *mongo.Collection the guard needs.
type Counter interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// Key describes one natural key to check.
type Key struct {
	// Field names the key in the error message, e.g. "email" or "class".
	Field  string
	Filter bson.M
	// ExcludeID skips the document being updated so that re-submitting an
	// unchanged value does not collide with itself.
	ExcludeID primitive.ObjectID
	// Collation must match the collation of the backing index.
	Collation *options.Collation
}

// Check fails with apperr.DuplicateField when another document matches the key.
// The check is not atomic with the write that follows it.
func Check(ctx context.Context, coll Counter, key Key) error {
	filter := bson.M{}
	for k, v := range key.Filter {
		filter[k] = v
	}
	if !key.ExcludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": key.ExcludeID}
	}

	opts := options.Count().SetLimit(1)
	if key.Collation != nil {
		opts.SetCollation(key.Collation)
	}
	n, err := coll.CountDocuments(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("check %s uniqueness: %w", key.Field, err)
	}
	if n > 0 {
		return apperr.DuplicateField(key.Field)
	}
	return nil
}

// CheckAll runs Check for each key in order and returns the first failure.
func CheckAll(ctx context.Context, coll Counter, keys ...Key) error {
	for _, key := range keys {
		if err := Check(ctx, coll, key); err != nil {
			return err
		}
	}
	return nil
}

// FromWriteError maps a duplicate-key error to apperr.DuplicateField using the
// index name reported by the server. indexFields maps index name to field.
// Non duplicate-key errors are returned unchanged.
func FromWriteError(err error, indexFields map[string]string) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	index := duplicateIndexName(err)
	if field, ok := indexFields[index]; ok {
		return &apperr.Error{Kind: apperr.KindDuplicateField, Field: field, Message: field + " already exists", Err: err}
	}
	return &apperr.Error{Kind: apperr.KindDuplicateField, Message: "duplicate value", Err: err}
}

// DuplicateIndex returns the index name of a duplicate-key error, or "".
func DuplicateIndex(err error) string {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return ""
	}
	return duplicateIndexName(err)
}

func duplicateIndexName(err error) string {
	var msgs []string
	var we mongo.WriteException
	var ce mongo.CommandError
	var bwe mongo.BulkWriteException
	switch {
	case errors.As(err, &we):
		for _, e := range we.WriteErrors {
			msgs = append(msgs, e.Message)
		}
		if we.WriteConcernError != nil {
			msgs = append(msgs, we.WriteConcernError.Message)
		}
	case errors.As(err, &bwe):
		for _, e := range bwe.WriteErrors {
			msgs = append(msgs, e.Message)
		}
	case errors.As(err, &ce):
		msgs = append(msgs, ce.Message)
	default:
		msgs = append(msgs, err.Error())
	}
	for _, msg := range msgs {
		if name := parseIndexName(msg); name != "" {
			return name
		}
	}
	return ""
}

// parseIndexName extracts "<name>" from "E11000 ... index: <name> dup key: ...".
func parseIndexName(msg string) string {
	const marker = "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
