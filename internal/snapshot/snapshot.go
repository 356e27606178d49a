// Package snapshot keeps the last known version of tracked documents.
//
// Each tracked document path owns one snapshot: the document content
// (annotations included) plus a BLAKE3 fingerprint of its flattened text.
// Tracking diffs a document on disk against its snapshot to reposition
// the annotations, then saves the result as the new snapshot.
//
// Snapshots are stored with diskv under a configurable directory,
// optionally xz compressed.
package snapshot

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/dshills/marginalia/internal/docfile"
	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/offset"
)

// ErrNotFound is returned when a document has no snapshot.
var ErrNotFound = errors.New("snapshot not found")

// DefaultCacheSizeMax is the in-memory cache size of the store in bytes.
const DefaultCacheSizeMax = 1024 * 1024

// Snapshot is a stored version of a document.
type Snapshot struct {
	Path        string
	Fingerprint string
	Saved       time.Time
	Content     document.Content
}

// Annotations returns the number of annotations in the snapshot.
func (s Snapshot) Annotations() int {
	return annotation.Count(s.Content)
}

// record is the serialised form of a Snapshot.
type record struct {
	Path        string       `json:"path"`
	Fingerprint string       `json:"fingerprint"`
	Saved       time.Time    `json:"saved"`
	Document    docfile.File `json:"document"`
}

// Options configures a Store.
type Options struct {
	// Dir is the base directory. A leading ~ is expanded.
	Dir string

	// CacheSizeMax bounds the read cache. Zero selects DefaultCacheSizeMax.
	CacheSizeMax uint64

	// Compress stores snapshots xz compressed.
	Compress bool

	Logger *slog.Logger
}

// Store persists snapshots keyed by document path.
type Store struct {
	d       *diskv.Diskv
	dir     string
	logger  *slog.Logger
	nowFunc func() time.Time
}

// Open creates a store rooted at opts.Dir, creating the directory if needed.
func Open(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, errors.New("snapshot: no store directory")
	}
	dir, err := homedir.Expand(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: expand %q: %w", opts.Dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: ensure store directory: %w", err)
	}

	cacheSize := opts.CacheSizeMax
	if cacheSize == 0 {
		cacheSize = DefaultCacheSizeMax
	}
	dopts := diskv.Options{
		BasePath:          dir,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      cacheSize,
	}
	if opts.Compress {
		dopts.Compression = xzCompression{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		d:       diskv.New(dopts),
		dir:     dir,
		logger:  logger.With("component", "snapshot"),
		nowFunc: time.Now,
	}, nil
}

// Dir returns the expanded store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save stores c as the snapshot of the document at docPath.
func (s *Store) Save(docPath string, c document.Content) (Snapshot, error) {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return Snapshot{}, err
	}
	f, err := docfile.Encode(c)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Path:        abs,
		Fingerprint: Fingerprint(c),
		Saved:       s.nowFunc().UTC(),
		Content:     c,
	}
	data, err := json.Marshal(record{
		Path:        snap.Path,
		Fingerprint: snap.Fingerprint,
		Saved:       snap.Saved,
		Document:    f,
	})
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.d.Write(keyFor(abs), data); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: write %s: %w", abs, err)
	}
	s.logger.Debug("saved snapshot", "path", abs, "fingerprint", snap.Fingerprint)
	return snap, nil
}

// Load returns the snapshot of the document at docPath.
func (s *Store) Load(docPath string) (Snapshot, error) {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return Snapshot{}, err
	}
	key := keyFor(abs)
	if !s.d.Has(key) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	return s.read(key)
}

// Delete removes the snapshot of the document at docPath.
func (s *Store) Delete(docPath string) error {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return err
	}
	key := keyFor(abs)
	if !s.d.Has(key) {
		return fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	return s.d.Erase(key)
}

// List returns all snapshots ordered by document path. Unreadable entries
// are logged and skipped.
func (s *Store) List(ctx context.Context) []Snapshot {
	var all []Snapshot
	for key := range s.d.Keys(ctx.Done()) {
		snap, err := s.read(key)
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot", "key", key, "error", err)
			continue
		}
		all = append(all, snap)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Path < all[j].Path
	})
	return all
}

func (s *Store) read(key string) (Snapshot, error) {
	data, err := s.d.Read(key)
	if err != nil {
		return Snapshot{}, err
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", key, err)
	}
	c, err := docfile.Decode(r.Document)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", key, err)
	}
	return Snapshot{
		Path:        r.Path,
		Fingerprint: r.Fingerprint,
		Saved:       r.Saved,
		Content:     c,
	}, nil
}

// Fingerprint returns the BLAKE3 hex digest of the flattened text of c.
// Styles and annotations do not contribute.
func Fingerprint(c document.Content) string {
	sum := blake3.Sum256([]byte(c.PlainText(offset.Separator)))
	return hex.EncodeToString(sum[:])
}

// keyFor derives the store key of an absolute document path.
func keyFor(abs string) string {
	sum := blake3.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:16])
}

// keyToPathTransform fans keys out over 256 directories.
func keyToPathTransform(key string) *diskv.PathKey {
	if len(key) < 2 {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{
		Path:     []string{key[:2]},
		FileName: key,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}

// xzCompression adapts xz to diskv.Compression.
type xzCompression struct{}

func (xzCompression) Writer(dst io.Writer) (io.WriteCloser, error) {
	w, err := xz.NewWriter(dst)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (xzCompression) Reader(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}
