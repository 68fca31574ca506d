package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "livraria.yaml"

// Config holds every path and setting of a catalog. It is passed explicitly to
// the store and the backup manager, so tests can run catalogs in temp dirs.
type Config struct {
	Root         string `yaml:"root"`
	DBPath       string `yaml:"db_path"`
	BackupDir    string `yaml:"backup_dir"`
	ExportDir    string `yaml:"export_dir"`
	BackupPrefix string `yaml:"backup_prefix"`
	BackupExt    string `yaml:"backup_ext"`
	BackupKeep   int    `yaml:"backup_keep"`
	CSVFile      string `yaml:"csv_file"`
	ReportFile   string `yaml:"report_file"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the layout of a catalog rooted at root.
func Default(root string) Config {
	cfg := Config{Root: root}
	cfg.applyDefaults()
	return cfg
}

// Option overrides a setting after the file and the environment are read.
type Option func(*Config)

// WithRoot moves the whole catalog under root.
func WithRoot(root string) Option {
	return func(c *Config) {
		if root != "" {
			c.Root = root
		}
	}
}

// WithLogLevel overrides the log level.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.LogLevel = level
		}
	}
}

// Load reads .env, then the YAML file (explicit path or DefaultFile when
// present), then LIVRARIA_* environment variables, then opts, and fills
// defaults.
func Load(file string, opts ...Option) (*Config, error) {
	// .env is optional; variables may come from the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	var cfg Config

	path := file
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && file == "":
		// no config file, defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the backup manager cannot work with.
func (c *Config) Validate() error {
	if c.BackupKeep < 0 {
		return fmt.Errorf("backup_keep must be >= 0, got %d", c.BackupKeep)
	}
	if strings.TrimSpace(c.BackupPrefix) == "" {
		return fmt.Errorf("backup_prefix is empty")
	}
	if strings.ContainsRune(c.BackupPrefix, filepath.Separator) {
		return fmt.Errorf("backup_prefix must not contain a path separator")
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Root, "LIVRARIA_ROOT")
	setString(&c.DBPath, "LIVRARIA_DB_PATH")
	setString(&c.BackupDir, "LIVRARIA_BACKUP_DIR")
	setString(&c.ExportDir, "LIVRARIA_EXPORT_DIR")
	setString(&c.LogLevel, "LIVRARIA_LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("LIVRARIA_BACKUP_KEEP")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIVRARIA_BACKUP_KEEP is not a number: %q", v)
		}
		c.BackupKeep = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Root = resolvePath(withDefault(c.Root, "meu_sistema_livraria"), "")
	c.DBPath = resolvePath(withDefault(c.DBPath, filepath.Join("data", "livraria.db")), c.Root)
	c.BackupDir = resolvePath(withDefault(c.BackupDir, "backups"), c.Root)
	c.ExportDir = resolvePath(withDefault(c.ExportDir, "exports"), c.Root)
	c.BackupPrefix = withDefault(c.BackupPrefix, "backup_livraria_")
	c.BackupExt = withDefault(c.BackupExt, ".db")
	if !strings.HasPrefix(c.BackupExt, ".") {
		c.BackupExt = "." + c.BackupExt
	}
	if c.BackupKeep == 0 {
		c.BackupKeep = 5
	}
	c.CSVFile = resolvePath(withDefault(c.CSVFile, "livros_exportados.csv"), c.ExportDir)
	c.ReportFile = resolvePath(withDefault(c.ReportFile, "relatorio_livros.html"), c.ExportDir)
	c.LogLevel = withDefault(c.LogLevel, "info")
}

// Dirs lists every directory the catalog needs.
func (c *Config) Dirs() []string {
	return []string{c.Root, filepath.Dir(c.DBPath), c.BackupDir, c.ExportDir}
}

// EnsureDirs creates the catalog directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range c.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func withDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// resolvePath makes p absolute relative to base, or to the working directory.
func resolvePath(p string, base string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	if base != "" {
		return filepath.Clean(filepath.Join(base, p))
	}

	if cwd, err := os.Getwd(); err == nil {
		return filepath.Clean(filepath.Join(cwd, p))
	}

	return p
}
