// Package services содержит обобщённую бизнес-логику доступа к сущностям:
// приведение полей запроса к типам колонок, координацию жизненного цикла
// вложений и кеширование чтения по идентификатору.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/fitnessclub/membership-api/internal/lib/sl"
	"github.com/fitnessclub/membership-api/internal/storage"
	"github.com/fitnessclub/membership-api/internal/storage/schema"
)

// ErrInvalidFields возвращается, когда запрос содержит неизвестное поле
// или значение не приводится к типу колонки.
var ErrInvalidFields = errors.New("invalid fields")

// Repository определяет методы обобщённого хранилища сущностей.
type Repository interface {
	// FetchAll возвращает все строки таблицы сущности.
	FetchAll(ctx context.Context, d schema.Descriptor) ([]map[string]any, error)
	// FetchOne возвращает строку по ID либо storage.ErrNotFound.
	FetchOne(ctx context.Context, d schema.Descriptor, id int) (map[string]any, error)
	// Insert вставляет строку и возвращает назначенный ID.
	Insert(ctx context.Context, d schema.Descriptor, fields map[string]any) (int, error)
	// Update обновляет присутствующие колонки и возвращает число изменённых строк.
	Update(ctx context.Context, d schema.Descriptor, id int, fields map[string]any) (int64, error)
	// Delete удаляет строку и возвращает число удалённых строк.
	Delete(ctx context.Context, d schema.Descriptor, id int) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// BlobStore описывает хранилище бинарных вложений.
type BlobStore interface {
	// Save сохраняет файл и возвращает путь к нему.
	Save(field string, file multipart.File, header *multipart.FileHeader) (string, error)
	// Remove удаляет файл по пути. Отсутствие файла не считается ошибкой.
	Remove(location string) error
}

// Upload входящий бинарный файл из multipart-запроса.
type Upload struct {
	Field  string
	File   multipart.File
	Header *multipart.FileHeader
}

const cacheTTL = time.Hour

// Service реализует пять CRUD-операций одной сущности поверх хранилища,
// кеша и хранилища вложений. Экземпляр создаётся на каждый тип сущности.
type Service struct {
	entity schema.Entity
	desc   schema.Descriptor
	repo   Repository
	cache  Cache
	blobs  BlobStore
	log    *slog.Logger
}

// NewService создает сервис для сущности с указанным тегом.
func NewService(entity schema.Entity, repo Repository, cache Cache, blobs BlobStore, log *slog.Logger) *Service {
	return &Service{
		entity: entity,
		desc:   schema.Get(entity),
		repo:   repo,
		cache:  cache,
		blobs:  blobs,
		log:    log,
	}
}

// Entity возвращает тег сущности сервиса.
func (s *Service) Entity() schema.Entity { return s.entity }

// AcceptsUpload сообщает, принимает ли сущность бинарное вложение.
func (s *Service) AcceptsUpload() bool { return s.desc.HasAttachment() }

// List возвращает все строки сущности.
func (s *Service) List(ctx context.Context) ([]map[string]any, error) {
	return s.repo.FetchAll(ctx, s.desc)
}

// Get возвращает строку по ID, используя кеш или хранилище.
func (s *Service) Get(ctx context.Context, id int) (map[string]any, error) {
	var cached map[string]any
	cacheKey := s.cacheKey(id)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	row, err := s.repo.FetchOne(ctx, s.desc, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, row, cacheTTL); err != nil {
		s.log.Warn("failed to cache entity", slog.String("key", cacheKey), sl.Err(err))
	}
	return row, nil
}

// Create создает строку сущности. Если запрос несёт бинарный файл,
// файл сохраняется до вставки, а его путь записывается в колонку
// вложения. Без файла колонка опускается и остаётся NULL.
func (s *Service) Create(ctx context.Context, raw map[string]any, upload *Upload) (int, error) {
	fields, err := s.coerce(raw)
	if err != nil {
		return 0, err
	}

	if upload != nil {
		location, err := s.blobs.Save(upload.Field, upload.File, upload.Header)
		if err != nil {
			return 0, fmt.Errorf("save attachment: %w", err)
		}
		fields[s.desc.Attachment] = location
	}

	id, err := s.repo.Insert(ctx, s.desc, fields)
	if err != nil {
		return 0, err
	}
	s.log.Info("created entity", slog.String("entity", string(s.entity)), slog.Int("id", id))
	return id, nil
}

// Update частично обновляет строку: меняются только переданные колонки.
// Новый файл замещает вложение целиком, прежний файл удаляется после
// успешного обновления строки (неудача удаления только логируется).
// Без нового файла колонка вложения не трогается. Пустой набор полей
// трактуется как no-op: ноль изменений при существующей строке.
func (s *Service) Update(ctx context.Context, id int, raw map[string]any, upload *Upload) (int64, error) {
	fields, err := s.coerce(raw)
	if err != nil {
		return 0, err
	}

	var replaced string
	if upload != nil {
		// Прежний путь читается до обновления, чтобы убрать замещённый файл.
		if prev, err := s.repo.FetchOne(ctx, s.desc, id); err == nil {
			replaced, _ = prev[s.desc.Attachment].(string)
		}
		location, err := s.blobs.Save(upload.Field, upload.File, upload.Header)
		if err != nil {
			return 0, fmt.Errorf("save attachment: %w", err)
		}
		fields[s.desc.Attachment] = location
	}

	count, err := s.repo.Update(ctx, s.desc, id, fields)
	if errors.Is(err, storage.ErrEmptyUpdate) {
		if _, err := s.repo.FetchOne(ctx, s.desc, id); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, storage.ErrNotFound
	}

	if replaced != "" {
		if err := s.blobs.Remove(replaced); err != nil {
			s.log.Warn("failed to remove replaced attachment",
				slog.String("location", replaced), sl.Err(err))
		}
	}
	s.invalidate(id)
	return count, nil
}

// Delete удаляет строку по ID. Для сущностей с вложением путь читается
// до удаления, а сам файл убирается после: неудача удаления файла не
// меняет результат операции.
func (s *Service) Delete(ctx context.Context, id int) (int64, error) {
	var location string
	if s.desc.HasAttachment() {
		if row, err := s.repo.FetchOne(ctx, s.desc, id); err == nil {
			location, _ = row[s.desc.Attachment].(string)
		}
	}

	count, err := s.repo.Delete(ctx, s.desc, id)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, storage.ErrNotFound
	}

	if location != "" {
		if err := s.blobs.Remove(location); err != nil {
			s.log.Warn("failed to remove attachment",
				slog.String("location", location), sl.Err(err))
		}
	}
	s.invalidate(id)
	return count, nil
}

func (s *Service) cacheKey(id int) string {
	return fmt.Sprintf("%s:%d", s.entity, id)
}

func (s *Service) invalidate(id int) {
	cacheKey := s.cacheKey(id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
}

// coerce приводит поля запроса к типам колонок дескриптора. Неизвестные
// поля и неприводимые значения отклоняются; колонка id не принимается,
// идентификатор назначается только при создании.
func (s *Service) coerce(raw map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(raw))
	for name, val := range raw {
		col, ok := s.desc.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q for %s", ErrInvalidFields, name, s.entity)
		}
		coerced, err := coerceValue(col, val)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidFields, name, err)
		}
		fields[name] = coerced
	}
	return fields, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"}

func coerceValue(col schema.Column, val any) (any, error) {
	if val == nil {
		return nil, nil
	}
	switch col.Kind {
	case schema.Text:
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", val)
		}
		return str, nil
	case schema.Number:
		switch v := val.(type) {
		case float64:
			return v, nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", v)
			}
			return f, nil
		}
		return nil, fmt.Errorf("expected number, got %T", val)
	case schema.Integer, schema.Ref:
		switch v := val.(type) {
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("expected integer, got %v", v)
			}
			return int64(v), nil
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", v)
			}
			return n, nil
		}
		return nil, fmt.Errorf("expected integer, got %T", val)
	case schema.Date:
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("expected date string, got %T", val)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, str); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unrecognized date %q", str)
	}
	return nil, fmt.Errorf("unsupported column kind %d", col.Kind)
}
