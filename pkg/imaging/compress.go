// Package imaging уменьшает крупные фотографии перед отправкой.
//
// Сжатие — best-effort шаг, а не проверка: любая ошибка возвращает
// исходный файл без изменений, пайплайн продолжает работу с оригиналом.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер
	"math"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // Регистрируем WEBP декодер

	"github.com/ilkoid/gomi-ai/pkg/config"
	"github.com/ilkoid/gomi-ai/pkg/upload"
)

// Дефолты совпадают с config.ImageProcConfig.GetDefaults().
const (
	DefaultThreshold    int64 = 5 * 1024 * 1024
	DefaultMaxDimension       = 1920
	DefaultQuality            = 80
)

// MaxPixels — предел заявленного размера (ширина × высота) для декодирования.
//
// Маленький PNG может объявить 60000×60000 и потребовать десятки GB
// при декодировании. Такие файлы отправляются как есть.
const MaxPixels = 50_000_000

// Compressor перекодирует крупные изображения в JPEG меньшего размера.
type Compressor struct {
	Threshold    int64 // Сжимаем только файлы строго больше порога
	MaxDimension int   // Максимальная сторона после ресайза
	Quality      int   // Качество JPEG (1-100)
}

// NewCompressor создаёт компрессор из конфигурации.
func NewCompressor(cfg config.ImageProcConfig, threshold int64) *Compressor {
	cfg = cfg.GetDefaults()
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Compressor{
		Threshold:    threshold,
		MaxDimension: cfg.MaxDimension,
		Quality:      cfg.Quality,
	}
}

// Outcome описывает результат попытки сжатия (для логов и событий).
type Outcome struct {
	Applied        bool  // true если на выходе сжатые данные
	OriginalSize   int64 // Байт до
	OutputSize     int64 // Байт после (== OriginalSize если не применено)
	OriginalWidth  int
	OriginalHeight int
	Width          int
	Height         int
	Err            error // Причина отката на оригинал; никогда не показывается пользователю
}

// ShouldCompress true если размер превышает порог.
func (c *Compressor) ShouldCompress(size int64) bool {
	return size > c.Threshold
}

// TargetSize вычисляет размеры после ресайза.
//
// Если большая сторона превышает maxDim, она становится ровно maxDim,
// меньшая масштабируется пропорционально с округлением (минимум 1).
// Иначе размеры не меняются.
func TargetSize(width, height, maxDim int) (int, int) {
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return width, height
	}
	if width >= height {
		h := int(math.Round(float64(height) * float64(maxDim) / float64(width)))
		return maxDim, max(h, 1)
	}
	w := int(math.Round(float64(width) * float64(maxDim) / float64(height)))
	return max(w, 1), maxDim
}

// Compress уменьшает файл, если это имеет смысл.
//
// Алгоритм:
//  1. Читаем заголовок; больше MaxPixels пикселей не декодируем
//  2. Декодируем изображение (JPEG, PNG, WEBP) и вычисляем целевые размеры (TargetSize)
//  3. Рисуем на непрозрачную белую поверхность целевого размера
//  4. Кодируем в JPEG с Quality
//  5. При любой ошибке или если результат не меньше оригинала — возвращаем оригинал
//
// Выход сохраняет имя файла, MIME тип становится image/jpeg.
func (c *Compressor) Compress(ctx context.Context, file *upload.SelectedFile) (*upload.SelectedFile, Outcome) {
	out := Outcome{OriginalSize: file.Size(), OutputSize: file.Size()}

	// Сначала только заголовок: размер проверяется до выделения памяти под пиксели
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		out.Err = fmt.Errorf("decode image config: %w", err)
		return file, out
	}
	out.OriginalWidth, out.OriginalHeight = cfg.Width, cfg.Height
	out.Width, out.Height = cfg.Width, cfg.Height
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		out.Err = fmt.Errorf("image %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxPixels)
		return file, out
	}

	img, _, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		out.Err = fmt.Errorf("decode image: %w", err)
		return file, out
	}

	b := img.Bounds()
	out.OriginalWidth, out.OriginalHeight = b.Dx(), b.Dy()
	out.Width, out.Height = out.OriginalWidth, out.OriginalHeight
	if b.Dx() <= 0 || b.Dy() <= 0 {
		out.Err = fmt.Errorf("invalid image size %dx%d", b.Dx(), b.Dy())
		return file, out
	}

	// Декодирование больших фото занимает время — уважаем отмену
	if err := ctx.Err(); err != nil {
		out.Err = err
		return file, out
	}

	w, h := TargetSize(b.Dx(), b.Dy(), c.MaxDimension)
	encoded, err := c.render(img, w, h)
	if err != nil {
		out.Err = err
		return file, out
	}

	if int64(len(encoded)) >= file.Size() {
		out.Err = fmt.Errorf("re-encoded image is not smaller (%d >= %d bytes)", len(encoded), file.Size())
		return file, out
	}

	out.Applied = true
	out.OutputSize = int64(len(encoded))
	out.Width, out.Height = w, h

	return &upload.SelectedFile{
		Name:     file.Name,
		MIMEType: upload.MIMEJPEG,
		Data:     encoded,
	}, out
}

// render ресайзит (Lanczos3) и кодирует изображение в JPEG.
func (c *Compressor) render(img image.Image, width, height int) ([]byte, error) {
	src := img
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		src = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	}

	// JPEG не хранит альфа-канал: прозрачные области заливаем белым
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.Quality}); err != nil {
		return nil, fmt.Errorf("encode to jpeg: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("encode to jpeg: empty output")
	}
	return buf.Bytes(), nil
}

// Dimensions читает размеры и формат без полного декодирования.
// Используется превью в UI.
func Dimensions(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}
