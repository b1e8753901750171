package repository

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"table-planner/internal/common/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ============================================================
// Database
// ============================================================

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// sqliteTimeLayout: фиксированная ширина, чтобы строки сравнивались как время.
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

//go:embed migrations/*/*.sql
var migrations embed.FS

type DB struct {
	*sqlx.DB
}

func NewDB(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

// Open открывает sqlite (по умолчанию) или postgres в зависимости от cfg.Driver.
// Драйвер sqlite регистрируется импортом в cmd.
func Open(cfg config.DBConfig) (*DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return openSQLite(cfg.Path)
	case DriverPostgres:
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func openSQLite(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return NewDB(db), nil
}

func openPostgres(cfg config.DBConfig) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.UserName,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)

	db, err := sqlx.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewDB(db), nil
}

// ============================================================
// Migrations
// ============================================================

// Migrate применяет встроенные миграции для текущего диалекта.
func (db *DB) Migrate(ctx context.Context) error {
	dir := path.Join("migrations", db.dialectDir())
	entries, err := migrations.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := migrations.ReadFile(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (db *DB) dialectDir() string {
	if db.DriverName() == DriverPostgres {
		return "postgres"
	}
	return "sqlite"
}

// ============================================================
// Time helpers
// ============================================================

// timeArg готовит время к записи: sqlite хранит текст фиксированного формата в UTC.
func timeArg(driver string, t time.Time) any {
	if driver == DriverSQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t
}

// dbTime сканирует время из time.Time (postgres) или текста (sqlite).
type dbTime struct {
	time.Time
}

var textTimeLayouts = []string{
	sqliteTimeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range textTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}
