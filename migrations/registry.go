package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	setto "github.com/goliatone/go-setto"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	// SourceLabel identifies the attempt ledger migrations in a shared
	// migration history.
	SourceLabel = "go-setto"

	migrationsDir = "data/sql/migrations"
)

// dialectDirs maps each dialect to its directory below the migrations root.
var dialectDirs = []struct {
	dialect string
	dir     string
}{
	{dialect: DialectPostgres, dir: "."},
	{dialect: DialectSQLite, dir: "sqlite"},
}

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithValidationTargets restricts registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if normalized := normalizeDialects(targets); len(normalized) > 0 {
			r.ValidationTargets = normalized
		}
	}
}

// Filesystems returns one filesystem per dialect from the embedded tree, or
// from source when given. source may be rooted at the module or at the
// migrations directory itself.
func Filesystems(source ...fs.FS) ([]FilesystemSpec, error) {
	root, rootPath, err := migrationsRoot(source...)
	if err != nil {
		return nil, err
	}

	filesystems := make([]FilesystemSpec, 0, len(dialectDirs))
	for _, entry := range dialectDirs {
		sub, err := fs.Sub(root, entry.dir)
		if err != nil {
			return nil, fmt.Errorf("migrations: resolve %s filesystem: %w", entry.dialect, err)
		}
		ups, err := fs.Glob(sub, "*.up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: glob %s: %w", entry.dialect, err)
		}
		specPath := path.Join(rootPath, entry.dir)
		if len(ups) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", entry.dialect, specPath)
		}
		filesystems = append(filesystems, FilesystemSpec{Dialect: entry.dialect, Path: specPath, FS: sub})
	}
	return filesystems, nil
}

// Register hands each targeted dialect filesystem to registerFn.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       SourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}
	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems
	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	for _, spec := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, spec.Dialect) {
			continue
		}
		if err := registerFn(ctx, spec.Dialect, reg.SourceLabel, spec.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", spec.Dialect, spec.Path, err)
		}
	}
	return reg, nil
}

// Apply registers the migrations for one dialect on a go-persistence-bun
// client and runs them.
func Apply(ctx context.Context, client *persistence.Client, dialect string, opts ...Option) error {
	if client == nil {
		return fmt.Errorf("migrations: persistence client is required")
	}
	normalized := normalizeDialects([]string{dialect})
	if len(normalized) != 1 || (normalized[0] != DialectPostgres && normalized[0] != DialectSQLite) {
		return fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	target := normalized[0]

	opts = append(opts, WithValidationTargets(target))
	if _, err := Register(ctx, func(_ context.Context, registered string, _ string, fsys fs.FS) error {
		if registered == target {
			client.RegisterSQLMigrations(fsys)
		}
		return nil
	}, opts...); err != nil {
		return err
	}
	return client.Migrate(ctx)
}

func migrationsRoot(source ...fs.FS) (fs.FS, string, error) {
	root := setto.GetMigrationsFS()
	if len(source) > 0 && source[0] != nil {
		root = source[0]
	}
	if info, err := fs.Stat(root, migrationsDir); err == nil && info.IsDir() {
		sub, err := fs.Sub(root, migrationsDir)
		if err != nil {
			return nil, "", fmt.Errorf("migrations: open %s: %w", migrationsDir, err)
		}
		return sub, migrationsDir, nil
	}
	if sqlFiles, err := fs.Glob(root, "*.sql"); err == nil && len(sqlFiles) > 0 {
		return root, ".", nil
	}
	return nil, "", fmt.Errorf("migrations: %s not found", migrationsDir)
}

func normalizeDialects(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		dialect := strings.ToLower(strings.TrimSpace(value))
		if dialect != "" && !slices.Contains(out, dialect) {
			out = append(out, dialect)
		}
	}
	return out
}
