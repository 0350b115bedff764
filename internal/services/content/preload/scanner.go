package preload

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "github.com/louisbranch/dragon.arena/internal/platform/errors"
	"github.com/louisbranch/dragon.arena/internal/services/content/catalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	tracerName = "github.com/louisbranch/dragon.arena/internal/services/content/preload"

	documentExt = ".json"

	// DefaultWorkers bounds how many category directories are read at once.
	DefaultWorkers = 4
)

// Scanner reads every category directory of a content tree.
type Scanner struct {
	root    string
	fsys    fs.FS
	workers int
	tracer  trace.Tracer
	logf    func(string, ...any)
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithWorkers sets how many categories are read concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Scanner) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithLogf sets the logger used for collision notices. Nil silences them.
func WithLogf(logf func(string, ...any)) Option {
	return func(s *Scanner) {
		s.logf = logf
	}
}

// NewScanner returns a scanner for the content tree rooted at dir.
func NewScanner(dir string, opts ...Option) *Scanner {
	root := dir
	if abs, err := filepath.Abs(dir); err == nil {
		root = abs
	}
	return NewFSScanner(root, os.DirFS(root), opts...)
}

// NewFSScanner returns a scanner over fsys. root is only used in error
// messages and spans.
func NewFSScanner(root string, fsys fs.FS, opts ...Option) *Scanner {
	s := &Scanner{
		root:    root,
		fsys:    fsys,
		workers: DefaultWorkers,
		tracer:  otel.Tracer(tracerName),
		logf:    log.Printf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the scanned root directory.
func (s *Scanner) Root() string {
	return s.root
}

type scannedDocument struct {
	path string
	doc  catalog.Document
}

// LoadAll reads and parses every *.json file one level below the root and
// returns the documents indexed by id.
//
// Any unreadable directory, unreadable file, malformed document or document
// without an id fails the whole scan; no partial index is returned.
func (s *Scanner) LoadAll(ctx context.Context) (*catalog.Index, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.tracer.Start(ctx, "preload.LoadAll", trace.WithAttributes(
		attribute.String("preload.root", s.root),
	))
	defer span.End()

	index, err := s.loadAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("preload.documents", index.Len()))
	return index, nil
}

func (s *Scanner) loadAll(ctx context.Context) (*catalog.Index, error) {
	if s.fsys == nil {
		return nil, apperrors.New(apperrors.CodePreloadScan, "content root is not configured")
	}
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, scanError(s.root, err)
	}

	var categories []string
	for _, entry := range entries {
		if entry.IsDir() {
			categories = append(categories, entry.Name())
		}
	}

	results := make([][]scannedDocument, len(categories))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for i, category := range categories {
		group.Go(func() error {
			docs, err := s.scanCategory(groupCtx, category)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	index := catalog.NewIndex()
	for _, docs := range results {
		for _, scanned := range docs {
			if index.Put(scanned.doc) && s.logf != nil {
				s.logf("preload: id %q redefined by %s, keeping the later document", scanned.doc.ID, scanned.path)
			}
		}
	}
	return index, nil
}

func (s *Scanner) scanCategory(ctx context.Context, category string) ([]scannedDocument, error) {
	entries, err := fs.ReadDir(s.fsys, category)
	if err != nil {
		return nil, scanError(filepath.Join(s.root, category), err)
	}

	var docs []scannedDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentExt) {
			continue
		}
		name := path.Join(category, entry.Name())
		fullPath := filepath.Join(s.root, filepath.FromSlash(name))

		data, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, scanError(fullPath, err)
		}
		doc, err := catalog.ParseDocument(data)
		if err != nil {
			return nil, apperrors.WrapWithMetadata(
				apperrors.CodePreloadDecode,
				fmt.Sprintf("parse %s: %v", fullPath, err),
				map[string]string{apperrors.MetadataPath: fullPath},
				err,
			)
		}
		docs = append(docs, scannedDocument{path: fullPath, doc: doc})
	}
	return docs, nil
}

func scanError(path string, err error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodePreloadScan,
		fmt.Sprintf("read %s: %v", path, err),
		map[string]string{apperrors.MetadataPath: path},
		err,
	)
}
