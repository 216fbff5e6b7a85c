package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ Store = (*PostgresStore)(nil)

// Document is one row of the JSONB-backed store. Every collection shares the
// table and is told apart by Collection.
type Document struct {
	ID         string    `gorm:"primaryKey;size:64"`
	Collection string    `gorm:"primaryKey;size:64;index"`
	Data       string    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

// PostgresStore keeps documents as JSONB rows through gorm.
type PostgresStore struct {
	db *gorm.DB
}

func ConnectPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:            false,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) FindOne(ctx context.Context, collection string, filter Filter, out any) error {
	q, err := s.query(ctx, collection, filter)
	if err != nil {
		return err
	}
	var row Document
	err = q.Order("created_at").Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(row.Data), out)
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter, opts FindOptions, out any) error {
	q, err := s.query(ctx, collection, filter)
	if err != nil {
		return err
	}
	for _, f := range opts.Sort {
		expr, err := sortExpr(f)
		if err != nil {
			return err
		}
		q = q.Order(expr)
	}
	q = q.Order("created_at")
	if opts.Skip > 0 {
		q = q.Offset(int(opts.Skip))
	}
	if opts.Limit > 0 {
		q = q.Limit(int(opts.Limit))
	}

	var rows []Document
	if err := q.Find(&rows).Error; err != nil {
		return err
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = r.Data
	}
	return json.Unmarshal([]byte("["+strings.Join(parts, ",")+"]"), out)
}

func (s *PostgresStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	q, err := s.query(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	err = q.Count(&n).Error
	return n, err
}

func (s *PostgresStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	var d document
	if err := normalize(doc, &d); err != nil {
		return "", err
	}
	id, _ := d["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		d["_id"] = id
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}

	row := Document{ID: id, Collection: collection, Data: string(raw)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	var result UpdateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := where(tx.Model(&Document{}).Where("collection = ?", collection), filter)
		if err != nil {
			return err
		}
		var row Document
		err = q.Clauses(clause.Locking{Strength: "UPDATE"}).Order("created_at").Limit(1).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		result.Matched = 1

		var current document
		if err := json.Unmarshal([]byte(row.Data), &current); err != nil {
			return err
		}
		var set document
		if len(update.Set) > 0 {
			if err := normalize(update.Set, &set); err != nil {
				return err
			}
		}
		next := make(document, len(current)+len(set))
		for k, v := range current {
			next[k] = v
		}
		for k, v := range set {
			next[k] = v
		}
		for _, k := range update.Unset {
			delete(next, k)
		}
		next["_id"] = current["_id"]
		if reflect.DeepEqual(current, next) {
			return nil
		}

		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		err = tx.Model(&Document{}).
			Where("collection = ? AND id = ?", collection, row.ID).
			Update("data", string(raw)).Error
		if err != nil {
			return err
		}
		result.Modified = 1
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return UpdateResult{}, ErrDuplicate
	}
	return result, err
}

func (s *PostgresStore) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := where(tx.Model(&Document{}).Where("collection = ?", collection), filter)
		if err != nil {
			return err
		}
		var row Document
		err = q.Order("created_at").Limit(1).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res := tx.Where("collection = ? AND id = ?", collection, row.ID).Delete(&Document{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (s *PostgresStore) EnsureIndexes(ctx context.Context, indexes []UniqueIndex) error {
	for _, idx := range indexes {
		stmt, err := uniqueIndexSQL(idx)
		if err != nil {
			return err
		}
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("create unique index %s.%s: %w", idx.Collection, idx.Field, err)
		}
	}
	return nil
}

// uniqueIndexSQL builds a partial expression index so the constraint only
// applies to rows of one collection.
func uniqueIndexSQL(idx UniqueIndex) (string, error) {
	if err := checkField(idx.Field); err != nil {
		return "", err
	}
	if err := checkField(idx.Collection); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_%s ON documents ((data->>'%s')) WHERE collection = '%s'",
		strings.ToLower(idx.Collection), strings.ToLower(idx.Field), idx.Field, idx.Collection,
	), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) query(ctx context.Context, collection string, filter Filter) (*gorm.DB, error) {
	return where(s.db.WithContext(ctx).Model(&Document{}).Where("collection = ?", collection), filter)
}

func where(q *gorm.DB, filter Filter) (*gorm.DB, error) {
	sql, args, err := condition(filter)
	if err != nil {
		return nil, err
	}
	if sql == "" {
		return q, nil
	}
	return q.Where(sql, args...), nil
}

// timestampPattern matches the RFC 3339 strings encoding/json writes for
// time.Time. The fraction has no fixed width, so such values are ordered as
// timestamptz rather than as text.
const timestampPattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+){0,1}(Z|[+-][0-9]{2}:[0-9]{2})$`

// sortExpr renders one sort key. Absent values come first in ascending order
// and last in descending order, as in the other stores.
func sortExpr(f SortField) (string, error) {
	if err := checkField(f.Field); err != nil {
		return "", err
	}
	dir := "ASC NULLS FIRST"
	if f.Desc {
		dir = "DESC NULLS LAST"
	}
	return fmt.Sprintf(
		"CASE WHEN data->>'%[1]s' ~ '%[2]s' THEN (data->>'%[1]s')::timestamptz END %[3]s, data->'%[1]s' %[3]s",
		f.Field, timestampPattern, dir,
	), nil
}

// condition renders a Filter as a SQL predicate over the data column. Keys
// are rendered in sorted order so the same filter always yields the same SQL.
func condition(filter Filter) (string, []any, error) {
	var (
		parts []string
		args  []any
	)
	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		want := filter[field]
		if field == OrKey {
			branches, err := orBranches(want)
			if err != nil {
				return "", nil, err
			}
			var ors []string
			for _, b := range branches {
				sql, a, err := condition(b)
				if err != nil {
					return "", nil, err
				}
				if sql == "" {
					sql = "TRUE"
				}
				ors = append(ors, "("+sql+")")
				args = append(args, a...)
			}
			if len(ors) > 0 {
				parts = append(parts, "("+strings.Join(ors, " OR ")+")")
			}
			continue
		}
		if err := checkField(field); err != nil {
			return "", nil, err
		}

		switch w := want.(type) {
		case NotEqual:
			raw, err := json.Marshal(w.Value)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, fmt.Sprintf("(data->'%[1]s' IS NULL OR data->'%[1]s' <> ?::jsonb)", field))
			args = append(args, string(raw))
		case Contains:
			parts = append(parts, fmt.Sprintf("data->>'%s' ILIKE ?", field))
			args = append(args, "%"+escapeLike(w.Text)+"%")
		default:
			raw, err := json.Marshal(want)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, fmt.Sprintf("data->'%s' = ?::jsonb", field))
			args = append(args, string(raw))
		}
	}
	return strings.Join(parts, " AND "), args, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
