// Package blob реализует файловое хранилище бинарных вложений.
// Имя файла собирается из имени поля, текущей метки времени и исходного
// расширения, что исключает коллизии между запросами.
package blob

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store хранит вложения в каталоге на диске.
type Store struct {
	dir string
}

// New создает хранилище в каталоге dir, создавая его при отсутствии.
func New(dir string) (*Store, error) {
	const op = "blob.New"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{dir: dir}, nil
}

// Dir возвращает каталог хранилища.
func (s *Store) Dir() string { return s.dir }

// Save сохраняет файл и возвращает путь к нему относительно процесса.
// Путь записывается в колонку вложения сущности как есть.
func (s *Store) Save(field string, file multipart.File, header *multipart.FileHeader) (string, error) {
	const op = "blob.Save"

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := fmt.Sprintf("%s-%d%s", field, time.Now().UnixMilli(), ext)
	location := filepath.Join(s.dir, name)

	dst, err := os.Create(location)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return location, nil
}

// Remove удаляет файл по пути. Уже отсутствующий файл не считается
// ошибкой: удаление вложений выполняется по возможности.
func (s *Store) Remove(location string) error {
	const op = "blob.Remove"

	// Путь приводится к каталогу хранилища, чужие файлы не трогаются.
	name := filepath.Base(location)
	path := filepath.Join(s.dir, name)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
