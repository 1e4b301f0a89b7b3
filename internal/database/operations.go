package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ecotrack/auth-service/internal/utils"
)

// Table represents a database table with common methods
type Table interface {
	TableName() string
}

// CRUD provides generic Postgres operations for any model with `db` struct tags
type CRUD struct {
	DB SQLDatabase
}

// NewCRUD creates a new CRUD instance with the given database
func NewCRUD(db SQLDatabase) *CRUD {
	return &CRUD{DB: db}
}

// ListOptions restricts and orders a List query
type ListOptions struct {
	Conditions map[string]interface{}
	OrderBy    string
	Limit      int
	Offset     int
}

// Columns returns the column names of a model in struct order
func Columns(model interface{}) []string {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var fields []string
	for i := 0; i < modelType.NumField(); i++ {
		dbTag := modelType.Field(i).Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}
		fields = append(fields, dbTag)
	}
	return fields
}

// ScanTargets returns pointers into model for each of its columns, in Columns order
func ScanTargets(model interface{}) []interface{} {
	modelValue := reflect.ValueOf(model).Elem()
	modelType := modelValue.Type()

	var targets []interface{}
	for i := 0; i < modelType.NumField(); i++ {
		dbTag := modelType.Field(i).Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}
		targets = append(targets, modelValue.Field(i).Addr().Interface())
	}
	return targets
}

// idColumn finds the primary key column, the first tag ending in _id
func idColumn(model Table) string {
	modelType := reflect.TypeOf(model).Elem()
	for i := 0; i < modelType.NumField(); i++ {
		dbTag := modelType.Field(i).Tag.Get("db")
		if strings.HasSuffix(dbTag, "_id") {
			return dbTag
		}
	}
	return "id"
}

// whereClause builds a deterministic WHERE clause numbered from $1
func whereClause(conditions map[string]interface{}) (string, []interface{}) {
	if len(conditions) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(conditions))
	for key := range conditions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	where := make([]string, 0, len(keys))
	params := make([]interface{}, 0, len(keys))
	for i, key := range keys {
		where = append(where, fmt.Sprintf("%s = $%d", key, i+1))
		params = append(params, conditions[key])
	}
	return " WHERE " + strings.Join(where, " AND "), params
}

// Delete removes a record by primary key. A missing record is a not found error.
func (c *CRUD) Delete(ctx context.Context, model Table, id interface{}) error {
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1",
		model.TableName(),
		idColumn(model),
	)

	log.Debug().
		Str("query", query).
		Interface("id", id).
		Str("table", model.TableName()).
		Msg("Deleting database record")

	result, err := c.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record from %s: %w", model.TableName(), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError(fmt.Sprintf("No %s record with id %v", strings.TrimSuffix(model.TableName(), "s"), id))
	}

	return nil
}

// List retrieves all records that match the given options into dest, a pointer to a slice
func (c *CRUD) List(ctx context.Context, model Table, dest interface{}, opts ListOptions) error {
	destValue := reflect.ValueOf(dest).Elem()
	elemType := destValue.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}

	where, params := whereClause(opts.Conditions)
	query := fmt.Sprintf("SELECT %s FROM %s%s",
		strings.Join(Columns(reflect.New(elemType).Interface()), ", "),
		model.TableName(),
		where,
	)
	if opts.OrderBy != "" {
		query += " ORDER BY " + opts.OrderBy
	}
	if opts.Limit > 0 {
		params = append(params, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(params))
	}
	if opts.Offset > 0 {
		params = append(params, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(params))
	}

	log.Debug().
		Str("query", query).
		Interface("params", params).
		Str("table", model.TableName()).
		Msg("Listing database records")

	rows, err := c.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("failed to query records from %s: %w", model.TableName(), err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	for rows.Next() {
		newElem := reflect.New(elemType)
		if err := rows.Scan(ScanTargets(newElem.Interface())...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		if isPtr {
			destValue.Set(reflect.Append(destValue, newElem))
		} else {
			destValue.Set(reflect.Append(destValue, newElem.Elem()))
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	return nil
}

// Count gets the count of records in a table with optional conditions
func (c *CRUD) Count(ctx context.Context, model Table, conditions map[string]interface{}) (int64, error) {
	where, params := whereClause(conditions)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", model.TableName(), where)

	log.Debug().
		Str("query", query).
		Interface("params", params).
		Str("table", model.TableName()).
		Msg("Counting database records")

	var count int64
	if err := c.DB.QueryRowContext(ctx, query, params...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records in %s: %w", model.TableName(), err)
	}

	return count, nil
}
