// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when an insert hits a unique constraint.
	ErrAlreadyExists = errors.New("already exists")
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sqlx.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "sqlite3")}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// ListOptions controls filtering, sorting and paging of list queries.
// Zero values mean "no filter" and the first page of DefaultPerPage rows.
type ListOptions struct {
	Search   string
	Tag      string
	Status   string
	Favorite *bool
	Archived *bool
	Page     int
	PerPage  int
	SortBy   string
	SortDir  string
}

const (
	DefaultPerPage = 50
	MaxPerPage     = 500
)

func (o ListOptions) limitOffset() (int, int) {
	perPage := o.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	page := o.Page
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}

// orderBy maps the requested sort key through an allow-list of columns so
// user input never reaches the SQL text.
func (o ListOptions) orderBy(allowed map[string]string, fallback, idCol string) string {
	col, ok := allowed[o.SortBy]
	if !ok {
		col = allowed[fallback]
	}
	dir := "DESC"
	if strings.EqualFold(o.SortDir, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s %s", col, dir, idCol, dir)
}

// filter accumulates WHERE clauses and their arguments.
type filter struct {
	clauses []string
	args    []interface{}
}

func newFilter(userCol string, userID int64) *filter {
	return &filter{clauses: []string{userCol + " = ?"}, args: []interface{}{userID}}
}

func (f *filter) add(clause string, args ...interface{}) {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args...)
}

// search matches the term against each column with LIKE.
func (f *filter) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	like := "%" + term + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		parts[i] = c + " LIKE ?"
		args[i] = like
	}
	f.add("("+strings.Join(parts, " OR ")+")", args...)
}

// flags applies the favorite and archived filters; prefix qualifies the
// columns when the query joins other tables.
func (f *filter) flags(opts ListOptions, prefix string) {
	if opts.Favorite != nil {
		f.add(prefix+"favorite = ?", *opts.Favorite)
	}
	if opts.Archived != nil {
		f.add(prefix+"archived = ?", *opts.Archived)
	}
}

func (f *filter) tag(tag string) {
	if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
		f.add("EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value = ?)", tag)
	}
}

func (f *filter) where() string {
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// list runs a count and a paged select against table with the same filter.
func (s *Store) list(dest interface{}, columns, table string, f *filter, opts ListOptions, order string) (int, error) {
	var total int
	if err := s.db.Get(&total, "SELECT COUNT(*) FROM "+table+f.where(), f.args...); err != nil {
		return 0, err
	}
	limit, offset := opts.limitOffset()
	query := "SELECT " + columns + " FROM " + table + f.where() + order + " LIMIT ? OFFSET ?"
	args := append(append([]interface{}{}, f.args...), limit, offset)
	if err := s.db.Select(dest, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// notFound converts sql.ErrNoRows into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// requireAffected turns a zero-row update or delete into ErrNotFound.
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
