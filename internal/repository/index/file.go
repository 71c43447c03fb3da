package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/servo-mc/servo/internal/config"
)

// Repository defines persistence operations for the cache metadata.
type Repository interface {
	// Get returns the build stored under key.
	Get(ctx context.Context, key string) (int, bool, error)
	// All returns a snapshot of every entry.
	All(ctx context.Context) (map[string]int, error)
	// Put stores build under key, replacing any earlier entry.
	Put(ctx context.Context, key string, build int) error
	// Update applies fn to the entries and persists the result unless fn fails.
	Update(ctx context.Context, fn func(entries map[string]int) error) error
	// Erase drops every entry.
	Erase(ctx context.Context) error
}

// errInvalidBuild is returned when a stored value is not a whole build number.
var errInvalidBuild = errors.New("invalid build number")

// FileRepository persists the metadata document to a JSON file on disk.
// JSON is produced and consumed via protojson on a structpb.Struct.
type FileRepository struct {
	// path is the filesystem location of the metadata document.
	path string
	// mu serializes every read-modify-write of the document.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the metadata document.
func (r *FileRepository) Path() string {
	return r.path
}

// Get returns the build stored under key.
func (r *FileRepository) Get(_ context.Context, key string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return 0, false, err
	}

	build, ok := entries[key]

	return build, ok, nil
}

// All returns a snapshot of every entry.
func (r *FileRepository) All(_ context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Put stores build under key.
func (r *FileRepository) Put(ctx context.Context, key string, build int) error {
	return r.Update(ctx, func(entries map[string]int) error {
		entries[key] = build

		return nil
	})
}

// Update applies fn to the current entries and writes them back.
// The document on disk is untouched when fn or the write fails.
func (r *FileRepository) Update(_ context.Context, fn func(entries map[string]int) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	if err = fn(entries); err != nil {
		return err
	}

	return r.store(entries)
}

// Erase drops every entry.
func (r *FileRepository) Erase(ctx context.Context) error {
	return r.Update(ctx, func(entries map[string]int) error {
		clear(entries)

		return nil
	})
}

// load reads the document; a missing file is an empty index.
func (r *FileRepository) load() (map[string]int, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]int), nil
		}

		return nil, fmt.Errorf("read cache index: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode cache index: %w", err)
	}

	entries := make(map[string]int, len(document.GetFields()))

	for key, value := range document.GetFields() {
		number, ok := value.GetKind().(*structpb.Value_NumberValue)
		if !ok || number.NumberValue != math.Trunc(number.NumberValue) || number.NumberValue < 0 {
			return nil, fmt.Errorf("decode cache index: %s: %w", key, errInvalidBuild)
		}

		entries[key] = int(number.NumberValue)
	}

	return entries, nil
}

// store replaces the document through a temporary file and a rename.
func (r *FileRepository) store(entries map[string]int) error {
	fields := make(map[string]*structpb.Value, len(entries))
	for key, build := range entries {
		fields[key] = structpb.NewNumberValue(float64(build))
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		return fmt.Errorf("encode cache index: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	temporary, err := os.CreateTemp(filepath.Dir(r.path), "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("create cache index: %w", err)
	}

	temporaryName := temporary.Name()

	if _, err = temporary.Write(data); err != nil {
		_ = temporary.Close()
		_ = os.Remove(temporaryName)

		return fmt.Errorf("write cache index: %w", err)
	}

	if err = temporary.Close(); err != nil {
		_ = os.Remove(temporaryName)

		return fmt.Errorf("write cache index: %w", err)
	}

	if err = os.Rename(temporaryName, r.path); err != nil {
		_ = os.Remove(temporaryName)

		return fmt.Errorf("replace cache index: %w", err)
	}

	return nil
}
