package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidPath возвращается для путей, выходящих за корень хранилища.
var ErrInvalidPath = errors.New("invalid storage path")

// FileStorage - хранилище загруженных файлов по относительному пути.
// Операции не транзакционны по отношению к базе данных.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// FsStorage - реализация FileStorage поверх afero.Fs.
type FsStorage struct {
	fs afero.Fs
}

// NewFsStorage создаёт хранилище поверх произвольной файловой системы afero.
func NewFsStorage(fs afero.Fs) *FsStorage {
	return &FsStorage{fs: fs}
}

// NewDiskStorage создаёт хранилище в каталоге root на диске.
func NewDiskStorage(root string) (*FsStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return NewFsStorage(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// Save записывает содержимое r по ключу key, создавая промежуточные каталоги.
func (s *FsStorage) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(clean), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create dir for %s: %w", clean, err)
	}

	f, err := s.fs.Create(clean)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", clean, err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = s.fs.Remove(clean)
		return 0, fmt.Errorf("failed to write %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", clean, err)
	}
	return n, nil
}

// Open открывает сохранённый файл на чтение.
func (s *FsStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", clean, err)
	}
	return f, nil
}

// Delete удаляет файл; отсутствие файла ошибкой не считается.
func (s *FsStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", clean, err)
	}
	return nil
}

func cleanKey(key string) (string, error) {
	key = filepath.ToSlash(strings.TrimSpace(key))
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return clean, nil
}

// SanitizeFileName оставляет только безопасные символы имени файла.
func SanitizeFileName(name string) string {
	name = filepath.Base(filepath.ToSlash(strings.TrimSpace(name)))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
