package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"livraria/internal/backup"
	"livraria/internal/config"
	"livraria/internal/db"
	"livraria/internal/exchange"
	"livraria/internal/models"
	"livraria/internal/storage"
	"livraria/internal/validate"
)

var (
	// ErrFileNotFound is returned by ImportCSV when the source file is missing.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidBook is returned when title or author is empty or when year
	// or price is out of range.
	ErrInvalidBook = errors.New("invalid book")
	// ErrInvalidPrice is returned for negative, NaN or infinite prices.
	ErrInvalidPrice = errors.New("invalid price")
)

// Service runs catalog operations. Every change goes through mutate:
// check first, then backup, then write.
type Service struct {
	store   *db.Store
	backups *backup.Manager
	cfg     config.Config
	now     func() time.Time
	log     *log.Logger
}

func NewService(store *db.Store, backups *backup.Manager, cfg config.Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:   store,
		backups: backups,
		cfg:     cfg,
		now:     time.Now,
		log:     logger,
	}
}

// Open wires a store and a backup manager for cfg. The caller closes the
// returned Service.
func Open(cfg config.Config, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	backups, err := backup.NewManager(backup.Options{
		Dir:    cfg.BackupDir,
		Prefix: cfg.BackupPrefix,
		Ext:    cfg.BackupExt,
		Keep:   cfg.BackupKeep,
		Source: cfg.DBPath,
		Init:   db.Init,
		Logger: logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Debug("catalog opened", "db", cfg.DBPath, "backups", cfg.BackupDir, "keep", cfg.BackupKeep)
	return NewService(store, backups, cfg, logger), nil
}

func (s *Service) Close() error {
	return s.store.Close()
}

// Config returns the paths the service was built with.
func (s *Service) Config() config.Config {
	return s.cfg
}

// mutate runs check; when it reports false nothing else happens, in
// particular no backup is taken. Otherwise a backup is created and apply runs.
func (s *Service) mutate(ctx context.Context, reason string, check func(ctx context.Context) (bool, error), apply func(ctx context.Context) error) (bool, error) {
	ok, err := check(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.Debug("nothing to change, backup skipped", "op", reason)
		return false, nil
	}

	if _, err := s.backups.Create(ctx, reason); err != nil {
		return false, fmt.Errorf("backup before %s: %w", reason, err)
	}

	if err := apply(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func always(context.Context) (bool, error) {
	return true, nil
}

func (s *Service) exists(id int64) func(ctx context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		_, ok, err := s.store.FindByID(ctx, id)
		return ok, err
	}
}

// AddBook validates and inserts a book, returning its id.
func (s *Service) AddBook(ctx context.Context, in models.BookInput) (int64, error) {
	title, okTitle := validate.Required(in.Title)
	author, okAuthor := validate.Required(in.Author)
	if !okTitle || !okAuthor {
		return 0, fmt.Errorf("%w: title and author are required", ErrInvalidBook)
	}
	if in.Year != nil && !validate.YearInRange(*in.Year, s.now()) {
		return 0, fmt.Errorf("%w: year %d out of range", ErrInvalidBook, *in.Year)
	}
	if in.Price != nil && !validate.PriceValid(*in.Price) {
		return 0, fmt.Errorf("%w: %w: %v", ErrInvalidBook, ErrInvalidPrice, *in.Price)
	}
	in.Title, in.Author = title, author

	var id int64
	_, err := s.mutate(ctx, "adicionar", always, func(ctx context.Context) error {
		var err error
		id, err = s.store.Insert(ctx, in)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("book added", "id", id, "title", in.Title)
	return id, nil
}

// ListBooks returns the catalog ordered by id.
func (s *Service) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.store.ListAll(ctx)
}

// FindBook looks a book up without side effects.
func (s *Service) FindBook(ctx context.Context, id int64) (models.Book, bool, error) {
	return s.store.FindByID(ctx, id)
}

// SearchByAuthor returns books whose author contains query.
func (s *Service) SearchByAuthor(ctx context.Context, query string) ([]models.Book, error) {
	return s.store.SearchByAuthor(ctx, query)
}

// UpdatePrice returns false, without a backup, when id does not exist.
// An invalid price fails with ErrInvalidPrice before anything is touched.
func (s *Service) UpdatePrice(ctx context.Context, id int64, price float64) (bool, error) {
	if !validate.PriceValid(price) {
		return false, fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	var changed bool
	ok, err := s.mutate(ctx, "atualizar_preco", s.exists(id), func(ctx context.Context) error {
		var err error
		changed, err = s.store.UpdatePrice(ctx, id, price)
		return err
	})
	if err != nil || !ok {
		return false, err
	}
	s.log.Info("price updated", "id", id, "price", price)
	return changed, nil
}

// RemoveBook returns false, without a backup, when id does not exist.
func (s *Service) RemoveBook(ctx context.Context, id int64) (bool, error) {
	var removed bool
	ok, err := s.mutate(ctx, "remover", s.exists(id), func(ctx context.Context) error {
		var err error
		removed, err = s.store.Delete(ctx, id)
		return err
	})
	if err != nil || !ok {
		return false, err
	}
	s.log.Info("book removed", "id", id)
	return removed, nil
}

// RemoveAll returns false, without a backup, when the catalog is empty.
func (s *Service) RemoveAll(ctx context.Context) (bool, error) {
	nonEmpty := func(ctx context.Context) (bool, error) {
		n, err := s.store.Count(ctx)
		return n > 0, err
	}
	ok, err := s.mutate(ctx, "remover_todos", nonEmpty, func(ctx context.Context) error {
		_, err := s.store.DeleteAll(ctx)
		return err
	})
	if err != nil || !ok {
		return false, err
	}
	s.log.Info("catalog cleared")
	return true, nil
}

// Backup creates a manual archive.
func (s *Service) Backup(ctx context.Context) (string, error) {
	return s.backups.Create(ctx, "manual")
}

// Backups lists archives, newest first.
func (s *Service) Backups() ([]models.Archive, error) {
	return s.backups.List()
}

// ExportCSV writes the catalog to path (the configured file when empty).
func (s *Service) ExportCSV(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = s.cfg.CSVFile
	}
	books, err := s.store.ListAll(ctx)
	if err != nil {
		return "", err
	}
	err = storage.WriteFile(path, func(w io.Writer) error {
		return exchange.WriteCSV(w, books)
	})
	if err != nil {
		return "", fmt.Errorf("export csv: %w", err)
	}
	s.log.Info("catalog exported", "path", path, "books", len(books))
	return path, nil
}

// ImportResult summarises an import.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// ImportCSV reads the whole file first. With no usable rows it returns a
// zero result and takes no backup; otherwise it backs up once and inserts
// every row in a single transaction.
func (s *Service) ImportCSV(ctx context.Context, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := exchange.ReadCSV(f, s.now())
	if err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	res := ImportResult{Skipped: parsed.Skipped}
	hasRows := func(context.Context) (bool, error) {
		return len(parsed.Books) > 0, nil
	}
	ok, err := s.mutate(ctx, "importar_csv", hasRows, func(ctx context.Context) error {
		var err error
		res.Inserted, err = s.store.InsertMany(ctx, parsed.Books)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	if !ok {
		s.log.Info("nothing to import", "path", path, "skipped", res.Skipped)
		return res, nil
	}
	s.log.Info("catalog imported", "path", path, "inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}

// GenerateReport renders the HTML report to path (the configured file when
// empty). Read-only: no backup.
func (s *Service) GenerateReport(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = s.cfg.ReportFile
	}
	books, err := s.store.ListAll(ctx)
	if err != nil {
		return "", err
	}
	generatedAt := s.now()
	err = storage.WriteFile(path, func(w io.Writer) error {
		return exchange.RenderReport(w, books, generatedAt)
	})
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	s.log.Info("report generated", "path", path, "books", len(books))
	return path, nil
}
