package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var _ Store = (*MongoStore)(nil)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo opens the long-lived client shared by every request.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter Filter, out any) error {
	q, err := toBSON(filter)
	if err != nil {
		return err
	}
	err = s.db.Collection(collection).FindOne(ctx, q).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter, opts FindOptions, out any) error {
	q, err := toBSON(filter)
	if err != nil {
		return err
	}

	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		sortDoc := bson.D{}
		for _, f := range opts.Sort {
			dir := 1
			if f.Desc {
				dir = -1
			}
			sortDoc = append(sortDoc, bson.E{Key: f.Field, Value: dir})
		}
		findOpts.SetSort(sortDoc)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, q, findOpts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (s *MongoStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	q, err := toBSON(filter)
	if err != nil {
		return 0, err
	}
	return s.db.Collection(collection).CountDocuments(ctx, q)
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	switch id := res.InsertedID.(type) {
	case string:
		return id, nil
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	q, err := toBSON(filter)
	if err != nil {
		return UpdateResult{}, err
	}
	if update.empty() {
		n, err := s.db.Collection(collection).CountDocuments(ctx, q, options.Count().SetLimit(1))
		return UpdateResult{Matched: n}, err
	}

	doc := bson.M{}
	if len(update.Set) > 0 {
		doc["$set"] = update.Set
	}
	if len(update.Unset) > 0 {
		unset := bson.M{}
		for _, k := range update.Unset {
			unset[k] = ""
		}
		doc["$unset"] = unset
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, q, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return UpdateResult{}, ErrDuplicate
		}
		return UpdateResult{}, err
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	q, err := toBSON(filter)
	if err != nil {
		return 0, err
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) EnsureIndexes(ctx context.Context, indexes []UniqueIndex) error {
	for _, idx := range indexes {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: idx.Field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create unique index %s.%s: %w", idx.Collection, idx.Field, err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toBSON(filter Filter) (bson.M, error) {
	q := bson.M{}
	for field, want := range filter {
		if field == OrKey {
			branches, err := orBranches(want)
			if err != nil {
				return nil, err
			}
			or := make(bson.A, 0, len(branches))
			for _, b := range branches {
				sub, err := toBSON(b)
				if err != nil {
					return nil, err
				}
				or = append(or, sub)
			}
			q["$or"] = or
			continue
		}
		if err := checkField(field); err != nil {
			return nil, err
		}

		switch w := want.(type) {
		case NotEqual:
			q[field] = bson.M{"$ne": w.Value}
		case Contains:
			q[field] = primitive.Regex{Pattern: regexp.QuoteMeta(w.Text), Options: "i"}
		default:
			q[field] = want
		}
	}
	return q, nil
}
