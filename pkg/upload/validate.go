package upload

import (
	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

// MaxFileSize — жёсткий лимит размера файла (10 MiB).
const MaxFileSize int64 = 10 * 1024 * 1024

var allowedTypes = map[string]bool{
	MIMEJPEG:     true,
	mimeJPGAlias: true,
	MIMEPNG:      true,
	MIMEWEBP:     true,
}

// IsAllowedType проверяет MIME тип по allow-list.
func IsAllowedType(mimeType string) bool {
	return allowedTypes[stripParams(mimeType)]
}

// Validate проверяет файл до любой сетевой операции.
//
// Порядок проверок (первая неудача побеждает):
//  1. MIME тип — JPEG, PNG или WEBP, иначе KindUnsupportedType
//  2. Размер > 0, иначе KindEmptyFile
//  3. Размер <= MaxFileSize, иначе KindTooLarge с фактическим размером
//
// Возвращает nil если файл допустим. Без побочных эффектов.
func Validate(file *SelectedFile) error {
	if file == nil {
		return gomi.NewError(gomi.KindEmptyFile, nil)
	}
	if !IsAllowedType(file.MIMEType) {
		return gomi.NewError(gomi.KindUnsupportedType, nil)
	}
	if file.Size() == 0 {
		return gomi.NewError(gomi.KindEmptyFile, nil)
	}
	if file.Size() > MaxFileSize {
		return gomi.TooLargeError(file.Size(), MaxFileSize)
	}
	return nil
}
