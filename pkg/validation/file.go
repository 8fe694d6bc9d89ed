package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"asset-system/config"
	apperrors "asset-system/pkg/errors"
)

// ValidateFile проверяет размер, расширение и сигнатуру вложения по профилю из config.UploadContexts.
// Ошибки - ValidationError по полю "file".
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("неизвестный профиль загрузки '%s'", contextName)
	}

	if fileHeader.Size == 0 {
		return apperrors.NewValidationError("file", "файл пустой")
	}
	if rules.MaxSizeMB > 0 && fileHeader.Size > rules.MaxSizeMB<<20 {
		return apperrors.NewValidationError("file", "размер файла (%.2f MB) превышает лимит в %d MB",
			float64(fileHeader.Size)/(1<<20), rules.MaxSizeMB)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if len(rules.AllowedExtensions) > 0 && !slices.Contains(rules.AllowedExtensions, ext) {
		return apperrors.NewValidationError("file", "расширение '%s' не поддерживается, ожидается %s",
			ext, strings.Join(rules.AllowedExtensions, ", "))
	}

	mimeType, err := sniff(file)
	if err != nil {
		return err
	}
	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return apperrors.NewValidationError("file", "недопустимый формат файла: %s", mimeType)
	}
	return nil
}

// sniff читает первые 512 байт и возвращает файл в начало.
func sniff(file io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("ошибка обработки файла: %w", err)
	}
	// "text/plain; charset=utf-8" -> "text/plain"
	mimeType, _, _ := strings.Cut(http.DetectContentType(buffer[:n]), ";")
	return mimeType, nil
}
