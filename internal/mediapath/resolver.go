package mediapath

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mkvsubs/internal/logging"
	"mkvsubs/internal/services"
)

// DefaultDepth scans root entries and one level of subdirectories.
const DefaultDepth = 2

// NotFoundError reports that no search root contained the filename.
type NotFoundError struct {
	Filename string
	Roots    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q not found in %d search director%s", e.Filename, len(e.Roots), plural(len(e.Roots)))
}

func (e *NotFoundError) Unwrap() error { return services.ErrNotFound }

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// Resolver maps a bare filename onto a real path.
type Resolver struct {
	roots  []string
	depth  int
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDepth overrides the scan depth. Zero limits resolution to the direct check.
func WithDepth(depth int) Option {
	return func(r *Resolver) {
		if depth >= 0 {
			r.depth = depth
		}
	}
}

// WithLogger attaches a logger for skipped-directory diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver constructs a resolver over roots, searched in the given order.
func NewResolver(roots []string, opts ...Option) *Resolver {
	r := &Resolver{
		roots:  append([]string(nil), roots...),
		depth:  DefaultDepth,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "mediapath")
	return r
}

// Roots returns a copy of the configured search roots.
func (r *Resolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// ValidateLeafName rejects names that would escape a search root or name a directory entry alias.
func ValidateLeafName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return services.Wrap(services.ErrValidation, "", "validate name", "filename is empty", nil)
	case name == "." || name == "..":
		return services.Wrap(services.ErrValidation, "", "validate name", fmt.Sprintf("%q is not a file name", name), nil)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, 0):
		return services.Wrap(services.ErrValidation, "", "validate name", fmt.Sprintf("%q must not contain path separators", name), nil)
	}
	return nil
}

// Resolve returns the real path of filename under the first root that holds it.
func (r *Resolver) Resolve(filename string) (string, error) {
	if err := ValidateLeafName(filename); err != nil {
		return "", err
	}

	for _, root := range r.roots {
		candidate := filepath.Join(root, filename)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if r.depth > 0 {
		for _, root := range r.roots {
			if found, ok := r.scan(root, filename, r.depth); ok {
				return found, nil
			}
		}
	}

	r.logger.Debug("filename not found",
		logging.String("filename", filename),
		logging.Strings("roots", r.roots),
		logging.Int("depth", r.depth),
	)
	return "", &NotFoundError{Filename: filename, Roots: r.Roots()}
}

// scan walks dir depth-first, entries in lexical order, descending at most depth levels.
func (r *Resolver) scan(dir, filename string, depth int) (string, bool) {
	if depth <= 0 {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Debug("skipping unreadable directory",
				logging.String("dir", dir),
				logging.Error(err),
			)
		}
		return "", false
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if found, ok := r.scan(full, filename, depth-1); ok {
				return found, true
			}
			continue
		}
		if entry.Name() == filename && isFile(entry, full) {
			return full, true
		}
	}
	return "", false
}

// isFile accepts regular files and symlinks that point at non-directories.
func isFile(entry fs.DirEntry, full string) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return true
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}
