package palimpsest

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultTrimThreshold is the partition row count at which a session
// schedules compaction. Evaluated per document partition, never against the
// whole file.
const DefaultTrimThreshold = 500

// DefaultTrimDebounce is the quiet period a session waits after the last
// qualifying change before compacting. Each new qualifying change resets the
// wait (debounce, not throttle). Override with WithTrimDebounce; zero means
// compact synchronously in the change handler.
const DefaultTrimDebounce = 1000 * time.Millisecond

// FileExt is the extension used for database files named after a document.
const FileExt = ".db"

type config struct {
	dir       string
	path      string
	threshold int64
	debounce  time.Duration
	logger    *slog.Logger
	origins   OriginGenerator
}

// Option configures a session at Attach time, or resolves a storage location
// for ClearDocument.
type Option func(*config)

func defaultConfig() config {
	return config{
		threshold: DefaultTrimThreshold,
		debounce:  DefaultTrimDebounce,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		origins:   OriginV7Generator{},
	}
}

// WithDirectory selects exclusive addressing: one file per document, located
// at <dir>/<name>.db. The directory is created if missing. Mutually exclusive
// with WithPath.
func WithDirectory(dir string) Option {
	return func(c *config) { c.dir = dir }
}

// WithPath selects shared addressing: one explicit file holding many
// documents, isolated by document name. Mutually exclusive with
// WithDirectory.
func WithPath(path string) Option {
	return func(c *config) { c.path = path }
}

// WithTrimThreshold overrides DefaultTrimThreshold for this session.
func WithTrimThreshold(n int64) Option {
	return func(c *config) { c.threshold = n }
}

// WithTrimDebounce overrides DefaultTrimDebounce for this session. A zero
// duration makes threshold compaction run synchronously inside the change
// handler, which tests rely on for determinism.
func WithTrimDebounce(d time.Duration) Option {
	return func(c *config) { c.debounce = d }
}

// WithLogger sets the session logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithOriginGenerator overrides the origin token generator. Tests use
// NewFixedOrigins for deterministic session identity.
func WithOriginGenerator(gen OriginGenerator) Option {
	return func(c *config) { c.origins = gen }
}

// normalizeName puts a document name into NFC form before it is used as a
// partition key or file name. Visually identical names that differ only in
// Unicode composition must land in the same partition on every platform.
func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// resolveLocation validates the location options and computes the physical
// file path for a (normalized) document name. exclusive reports whether the
// file is dedicated to this one document.
func (c *config) resolveLocation(name string) (path string, exclusive bool, err error) {
	if c.dir != "" && c.path != "" {
		return "", false, &ConfigError{Reason: "WithDirectory and WithPath are mutually exclusive"}
	}
	if c.path != "" {
		return c.path, false, nil
	}
	if c.dir != "" {
		return filepath.Join(c.dir, name+FileExt), true, nil
	}
	return name + FileExt, true, nil
}
