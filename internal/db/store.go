package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"livraria/internal/models"

	_ "modernc.org/sqlite"
)

// Store owns the catalog file. Every change is one statement or one transaction.
type Store struct {
	db   *sql.DB
	path string
}

const bookColumns = `id, titulo, autor, ano_publicacao, preco`

// Open creates the directory, the file and the schema when missing.
// Calling it again on the same path is harmless.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty SQLite path")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// PRAGMAs are per connection, so there is exactly one.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Init opens the store at path and closes it again, leaving an empty
// catalog on disk.
func Init(path string) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	return s.Close()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the live store file.
func (s *Store) Path() string {
	return s.path
}

func applyPragmas(db *sql.DB) error {
	// journal_mode=DELETE: after a commit the whole catalog lives in one file,
	// and a copy of that file is a complete backup.
	pragma := []string{
		"PRAGMA journal_mode = DELETE;",
		"PRAGMA synchronous = FULL;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, stmt := range pragma {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply pragma: %w", err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS livros (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	titulo TEXT NOT NULL,
	autor TEXT NOT NULL,
	ano_publicacao INTEGER,
	preco REAL
);
`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, ex execer, in models.BookInput) (int64, error) {
	res, err := ex.ExecContext(ctx, `
INSERT INTO livros (titulo, autor, ano_publicacao, preco) VALUES (?, ?, ?, ?)
`, strings.TrimSpace(in.Title), strings.TrimSpace(in.Author), nullInt(in.Year), nullFloat(in.Price))
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return res.LastInsertId()
}

// Insert adds one record and returns its id.
func (s *Store) Insert(ctx context.Context, in models.BookInput) (int64, error) {
	return insert(ctx, s.db, in)
}

// InsertMany adds every record in a single transaction.
func (s *Store) InsertMany(ctx context.Context, books []models.BookInput) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for i, b := range books {
		if _, err := insert(ctx, tx, b); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(books), nil
}

// ListAll returns the whole catalog ordered by id.
func (s *Store) ListAll(ctx context.Context) ([]models.Book, error) {
	return s.query(ctx, `SELECT `+bookColumns+` FROM livros ORDER BY id`)
}

// SearchByAuthor matches query as a substring of the author (SQLite LIKE,
// case-insensitive for ASCII).
func (s *Store) SearchByAuthor(ctx context.Context, query string) ([]models.Book, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	return s.query(ctx, `SELECT `+bookColumns+` FROM livros WHERE autor LIKE ? ORDER BY id`, like)
}

// FindByID reports whether a record with id exists.
func (s *Store) FindByID(ctx context.Context, id int64) (models.Book, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM livros WHERE id = ?`, id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return models.Book{}, false, nil
	}
	if err != nil {
		return models.Book{}, false, fmt.Errorf("find book %d: %w", id, err)
	}
	return b, true, nil
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM livros`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// UpdatePrice returns false when no record has id.
func (s *Store) UpdatePrice(ctx context.Context, id int64, price float64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE livros SET preco = ? WHERE id = ?`, price, id)
	if err != nil {
		return false, fmt.Errorf("update price: %w", err)
	}
	return affected(res)
}

// Delete returns false when no record has id.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM livros WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	return affected(res)
}

// DeleteAll returns false when the catalog was already empty.
func (s *Store) DeleteAll(ctx context.Context) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM livros`)
	if err != nil {
		return false, fmt.Errorf("delete all books: %w", err)
	}
	return affected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (models.Book, error) {
	var (
		b     models.Book
		year  sql.NullInt64
		price sql.NullFloat64
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &year, &price); err != nil {
		return models.Book{}, err
	}
	if year.Valid {
		b.Year = models.IntPtr(int(year.Int64))
	}
	if price.Valid {
		b.Price = models.FloatPtr(price.Float64)
	}
	return b, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return books, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
