// Package backup keeps timestamped copies of the catalog file and rotates
// them so only the most recent ones survive.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"livraria/internal/models"
	"livraria/internal/storage"
)

// TimestampLayout is the second-resolution stamp embedded in archive names.
const TimestampLayout = "2006-01-02_15-04-05"

// maxSuffix bounds the same-second uniqueness suffix (_01 .. _99).
const maxSuffix = 99

// Options configures a Manager.
type Options struct {
	Dir    string // archive directory
	Prefix string // fixed archive name prefix
	Ext    string // archive extension, with the dot
	Keep   int    // retention count; <= 0 keeps everything

	// Source is the live store file to copy.
	Source string
	// Init creates Source when it does not exist yet.
	Init func(path string) error

	Now    func() time.Time
	// Remove deletes an archive during pruning; os.Remove when nil.
	Remove func(path string) error
	Logger *log.Logger
}

// Manager creates and prunes archives. It only reads the live store file.
type Manager struct {
	opts Options
	log  *log.Logger
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("backup directory is empty")
	}
	if opts.Source == "" {
		return nil, fmt.Errorf("backup source is empty")
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("backup prefix is empty")
	}
	if opts.Ext == "" {
		opts.Ext = filepath.Ext(opts.Source)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Remove == nil {
		opts.Remove = os.Remove
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{opts: opts, log: logger.WithPrefix("backup")}, nil
}

// Keep returns the configured retention count.
func (m *Manager) Keep() int {
	return m.opts.Keep
}

// Create copies the live store into a new archive and prunes old ones.
// reason is only logged.
func (m *Manager) Create(ctx context.Context, reason string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	exists, err := storage.Exists(m.opts.Source)
	if err != nil {
		return "", fmt.Errorf("stat store: %w", err)
	}
	if !exists {
		if m.opts.Init == nil {
			return "", fmt.Errorf("store %s does not exist", m.opts.Source)
		}
		m.log.Debug("store missing, initializing", "path", m.opts.Source)
		if err := m.opts.Init(m.opts.Source); err != nil {
			return "", fmt.Errorf("initialize store: %w", err)
		}
	}

	if err := os.MkdirAll(m.opts.Dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	now := m.opts.Now()
	stamp := now.Format(TimestampLayout)

	for n := 0; n <= maxSuffix; n++ {
		path := filepath.Join(m.opts.Dir, m.archiveName(stamp, n))

		size, err := storage.CopyNew(m.opts.Source, path)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("copy store to %s: %w", path, err)
		}

		// mtime is the creation instant; rotation orders by it.
		if err := os.Chtimes(path, now, now); err != nil {
			m.log.Warn("set archive time failed", "path", path, "err", err)
		}

		m.log.Info("backup created", "path", path, "reason", reason, "bytes", size)
		m.Prune(m.opts.Keep)
		return path, nil
	}

	return "", fmt.Errorf("too many backups within %s", stamp)
}

func (m *Manager) archiveName(stamp string, n int) string {
	if n == 0 {
		return m.opts.Prefix + stamp + m.opts.Ext
	}
	return fmt.Sprintf("%s%s_%02d%s", m.opts.Prefix, stamp, n, m.opts.Ext)
}

// List returns the archives newest first.
func (m *Manager) List() ([]models.Archive, error) {
	entries, err := os.ReadDir(m.opts.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Archive{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	archives := []models.Archive{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, m.opts.Prefix) || !strings.HasSuffix(name, m.opts.Ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		archives = append(archives, models.Archive{
			Name:    name,
			Path:    filepath.Join(m.opts.Dir, name),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		if !archives[i].ModTime.Equal(archives[j].ModTime) {
			return archives[i].ModTime.After(archives[j].ModTime)
		}
		return archives[i].Name > archives[j].Name
	})
	return archives, nil
}

// Prune deletes every archive beyond the keep most recent ones. Failures are
// logged and otherwise ignored; it returns how many archives were removed.
func (m *Manager) Prune(keep int) int {
	if keep <= 0 {
		return 0
	}

	archives, err := m.List()
	if err != nil {
		m.log.Warn("list backups failed, skipping prune", "err", err)
		return 0
	}
	if len(archives) <= keep {
		return 0
	}

	removed := 0
	for _, a := range archives[keep:] {
		if err := m.opts.Remove(a.Path); err != nil {
			m.log.Warn("remove old backup failed", "path", a.Path, "err", err)
			continue
		}
		m.log.Debug("old backup removed", "path", a.Path)
		removed++
	}
	return removed
}
