package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicPrefix - URL-префикс, под которым echo раздаёт каталог загрузок.
const PublicPrefix = "/uploads/"

type FileStorageInterface interface {
	// Save возвращает публичный URL сохранённого файла.
	Save(file io.Reader, originalFileName string, prefix string) (string, error)
	Delete(fileURL string) error
}

type LocalFileStorage struct {
	basePath string
	now      func() time.Time
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %w", err)
	}
	return &LocalFileStorage{basePath: basePath, now: time.Now}, nil
}

func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	now := s.now()
	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)

	datePath := now.Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return PublicPrefix + filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), nil
}

// Delete принимает URL вида "/uploads/orders/2024/08/21/file.jpg".
// Внешние ссылки и отсутствующие файлы пропускаются.
func (s *LocalFileStorage) Delete(fileURL string) error {
	if !strings.HasPrefix(fileURL, PublicPrefix) {
		return nil
	}
	relativePath := filepath.Clean(strings.TrimPrefix(fileURL, PublicPrefix))
	if strings.HasPrefix(relativePath, "..") {
		return fmt.Errorf("недопустимый путь файла: %s", fileURL)
	}

	fullPath := filepath.Join(s.basePath, relativePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fullPath)
}
