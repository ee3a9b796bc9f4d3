package optimization

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/radio-bridge/internal/config"
	domain "github.com/oshokin/radio-bridge/internal/domain/optimization"
)

// Repository defines persistence operations for the optimization settings.
type Repository interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

// FileRepository persists the settings to a JSON file on disk.
// The file holds a google.protobuf.Struct so it can be read by any client
// that already speaks the method channel wire format.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the settings file does not exist yet.
	ErrNotFound = errors.New("optimization settings not found")
	// errNotBool is returned when a stored setting is not a boolean.
	errNotBool = errors.New("setting is not a boolean")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the settings from disk. Unknown keys are dropped.
func (r *FileRepository) Load(_ context.Context) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var stored structpb.Struct
	if err = protojson.Unmarshal(contents, &stored); err != nil {
		return nil, fmt.Errorf("decode settings file: %w", err)
	}

	settings := make(domain.Settings, len(stored.GetFields()))

	for name, value := range stored.GetFields() {
		enabled, ok := value.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, errNotBool)
		}

		settings[domain.Setting(name)] = enabled.BoolValue
	}

	return settings.Normalize(), nil
}

// Save writes the settings to disk.
func (r *FileRepository) Save(_ context.Context, settings domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := structpb.NewStruct(settings.Fields())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	return writeFileAtomic(r.path, data)
}

// writeFileAtomic writes data to a temporary file next to path and renames it over path,
// so readers never see a partially written settings file.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary settings file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	if err = tmp.Chmod(config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("set settings file permissions: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close settings file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}
