package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"felix-hub/config"
)

// Расширения, которые браузеры и Telegram подставляют для фото.
var photoExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ValidateFile сверяет размер, расширение и MIME по первым байтам с правилами контекста загрузки.
// После проверки указатель файла снова в начале.
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("неизвестный контекст загрузки: %s", contextName)
	}

	if rules.MaxSizeMB > 0 && fileHeader.Size > rules.MaxSizeMB<<20 {
		return fmt.Errorf("размер файла (%d KB) превышает лимит в %d MB", fileHeader.Size>>10, rules.MaxSizeMB)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if expected, known := photoExtensions[ext]; ext != "" && (!known || !slices.Contains(rules.AllowedMimeTypes, expected)) {
		return fmt.Errorf("недопустимое расширение файла: %s", ext)
	}

	mimeType, err := sniffMimeType(file)
	if err != nil {
		return err
	}
	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return fmt.Errorf("недопустимый тип файла: %s", mimeType)
	}
	return nil
}

func sniffMimeType(file io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("не удалось прочитать файл для определения типа")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("не удалось сбросить указатель файла")
	}
	return http.DetectContentType(head[:n]), nil
}
