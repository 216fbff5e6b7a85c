package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

const (
	CollectionUsers          = "users"
	CollectionSessions       = "sessions"
	CollectionMaterials      = "materials"
	CollectionBookedSessions = "bookedSessions"
	CollectionReviews        = "reviews"
	CollectionNotes          = "notes"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// OrKey holds a []Filter of alternatives inside a Filter.
const OrKey = "$or"

// Filter selects documents by field. Plain values match by equality.
type Filter map[string]any

// NotEqual matches documents whose field differs from Value or is absent.
type NotEqual struct {
	Value any
}

// Contains matches string fields holding Text, ignoring case.
type Contains struct {
	Text string
}

type SortField struct {
	Field string
	Desc  bool
}

type FindOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

type Update struct {
	Set   map[string]any
	Unset []string
}

func (u Update) empty() bool {
	return len(u.Set) == 0 && len(u.Unset) == 0
}

type UpdateResult struct {
	Matched  int64
	Modified int64
}

type UniqueIndex struct {
	Collection string
	Field      string
}

// Indexes are the unique constraints every backend enforces.
var Indexes = []UniqueIndex{
	{Collection: CollectionUsers, Field: "email"},
}

// Store is the document database the handlers talk to.
type Store interface {
	FindOne(ctx context.Context, collection string, filter Filter, out any) error
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions, out any) error
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	InsertOne(ctx context.Context, collection string, doc any) (string, error)
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)
	EnsureIndexes(ctx context.Context, indexes []UniqueIndex) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkField(name string) error {
	if !fieldName.MatchString(name) {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

func orBranches(v any) ([]Filter, error) {
	branches, ok := v.([]Filter)
	if !ok {
		return nil, fmt.Errorf("%s expects []Filter, got %T", OrKey, v)
	}
	return branches, nil
}
