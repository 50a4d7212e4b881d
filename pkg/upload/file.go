// Package upload описывает выбранный пользователем файл и его проверку.
//
// SelectedFile живёт только в памяти: оркестратор владеет им от выбора
// до завершения отправки или сброса. На диск ничего не пишется.
package upload

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Поддерживаемые MIME типы.
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWEBP = "image/webp"

	// mimeJPGAlias встречается у некоторых браузеров и камер.
	mimeJPGAlias = "image/jpg"
)

// SelectedFile — бинарные данные изображения с заявленным типом.
type SelectedFile struct {
	Name     string // Имя файла без пути
	MIMEType string // Заявленный MIME тип
	Data     []byte
}

// NewSelectedFile создаёт файл, определяя MIME тип по имени и содержимому.
func NewSelectedFile(name string, data []byte) *SelectedFile {
	return &SelectedFile{
		Name:     filepath.Base(name),
		MIMEType: DetectMIME(name, data),
		Data:     data,
	}
}

// Size возвращает размер в байтах.
func (f *SelectedFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// SizeMB возвращает размер в мегабайтах (1 MB = 1024*1024 байт).
func (f *SelectedFile) SizeMB() float64 {
	return float64(f.Size()) / 1024 / 1024
}

// DetectMIME определяет заявленный тип файла.
//
// Сначала по расширению (как делает браузер для <input type=file>),
// затем по сигнатуре содержимого. Параметры типа (charset) отбрасываются.
func DetectMIME(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg":
		return MIMEJPEG
	case ".png":
		return MIMEPNG
	case ".webp":
		return MIMEWEBP
	}

	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return stripParams(t)
		}
	}
	if len(data) > 0 {
		return stripParams(http.DetectContentType(data))
	}
	return "application/octet-stream"
}

func stripParams(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(strings.ToLower(t))
}
