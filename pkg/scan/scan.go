// Package scan audits every loose object and pack container of a repository.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/guardian/pkg/object"
)

// ErrNoRepository is returned when a path does not hold a git directory with
// an objects/ subdirectory.
var ErrNoRepository = errors.New("not a git repository")

// TargetKind tells which reader validated a file.
type TargetKind string

const (
	TargetLoose TargetKind = "loose"
	TargetPack  TargetKind = "pack"
)

// Result is the outcome of validating one file.
type Result struct {
	Path string
	Kind TargetKind
	// NumObjects counts the objects that validated, which for a failed pack
	// is the entries read before the failure.
	NumObjects int
	// Objects holds the validated objects when the scanner collects them.
	Objects []object.Object
	Err     error
}

// OK reports whether the file validated completely.
func (r Result) OK() bool { return r.Err == nil }

// Report aggregates the results of one scan.
type Report struct {
	GitDir string
	// Results are sorted by path.
	Results []Result
}

// Failures returns the results that carry an error.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// NumFailures returns how many files failed validation.
func (r *Report) NumFailures() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Err combines every per-file failure, or returns nil for a clean scan.
func (r *Report) Err() error {
	var err error
	for _, res := range r.Results {
		if res.Err != nil {
			err = multierr.Append(err, res.Err)
		}
	}
	return err
}

// Objects returns the collected objects of every result in path order.
func (r *Report) Objects() []object.Object {
	var out []object.Object
	for _, res := range r.Results {
		out = append(out, res.Objects...)
	}
	return out
}

// NumObjects returns the total number of validated objects.
func (r *Report) NumObjects() int {
	n := 0
	for _, res := range r.Results {
		n += res.NumObjects
	}
	return n
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger receiving one entry per scanned file.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers bounds how many files are validated concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMetrics records per-file outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithSkipPacks restricts the scan to loose objects.
func WithSkipPacks(skip bool) Option {
	return func(s *Scanner) { s.skipPacks = skip }
}

// WithCollectObjects keeps validated objects in the report for graph building.
func WithCollectObjects(collect bool) Option {
	return func(s *Scanner) { s.collect = collect }
}

// Scanner runs the loose and pack readers over a repository.
type Scanner struct {
	logger    *zap.Logger
	workers   int
	skipPacks bool
	collect   bool
	metrics   *Metrics
}

// New returns a Scanner with a no-op logger and one worker per CPU.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		logger:  zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveGitDir returns path/.git when it exists, otherwise path itself. The
// result must contain an objects/ directory.
func ResolveGitDir(path string) (string, error) {
	gitDir := path
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		gitDir = filepath.Join(path, ".git")
	}

	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: directory %s does not exist", ErrNoRepository, gitDir)
	}
	info, err = os.Stat(filepath.Join(gitDir, "objects"))
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: no objects found in %s", ErrNoRepository, gitDir)
	}
	return gitDir, nil
}

type target struct {
	path string
	kind TargetKind
}

// Scan validates every loose object and pack container under gitDir. Per-file
// failures are recorded in the report; the returned error is reserved for
// discovery failures and cancellation.
func (s *Scanner) Scan(ctx context.Context, gitDir string) (*Report, error) {
	start := time.Now()
	store := object.NewStore(gitDir)
	targets, err := s.discover(store)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(targets))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = s.check(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", gitDir, err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	report := &Report{GitDir: store.Root(), Results: results}
	s.metrics.observeScan(time.Since(start))
	s.logger.Info("scan complete",
		zap.String("git_dir", report.GitDir),
		zap.Int("files", len(results)),
		zap.Int("objects", report.NumObjects()),
		zap.Int("failures", report.NumFailures()),
	)
	return report, nil
}

func (s *Scanner) discover(store *object.Store) ([]target, error) {
	loose, err := store.LooseObjectPaths()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", store.Root(), err)
	}
	targets := make([]target, 0, len(loose))
	for _, p := range loose {
		targets = append(targets, target{path: p, kind: TargetLoose})
	}

	if s.skipPacks {
		return targets, nil
	}
	packs, err := store.PackPaths()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", store.Root(), err)
	}
	for _, p := range packs {
		targets = append(targets, target{path: p, kind: TargetPack})
	}
	return targets, nil
}

func (s *Scanner) check(t target) Result {
	res := Result{Path: t.path, Kind: t.kind}

	var objects []object.Object
	switch t.kind {
	case TargetLoose:
		obj, err := object.ReadLoose(t.path)
		if obj != nil {
			objects = []object.Object{*obj}
		}
		res.Err = err
	case TargetPack:
		pf, err := object.ReadPackFile(t.path)
		if pf != nil {
			objects = pf.Objects
		}
		res.Err = err
	}

	res.NumObjects = len(objects)
	if s.collect {
		res.Objects = objects
	}
	s.log(res)
	s.metrics.observe(res)
	return res
}

func (s *Scanner) log(res Result) {
	fields := []zap.Field{
		zap.String("path", res.Path),
		zap.String("kind", string(res.Kind)),
		zap.Int("objects", res.NumObjects),
	}
	if res.Err == nil {
		s.logger.Debug("object file valid", fields...)
		return
	}

	var oe *object.Error
	if errors.As(res.Err, &oe) {
		fields = append(fields, zap.Stringer("error_kind", oe.Kind))
		if oe.Offset >= 0 {
			fields = append(fields, zap.Int64("offset", oe.Offset))
		}
		if oe.Entry >= 0 {
			fields = append(fields, zap.Int("entry", oe.Entry))
		}
	}
	s.logger.Warn("object file invalid", append(fields, zap.Error(res.Err))...)
}
