package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ilkoid/gomi-ai/pkg/s3storage"
)

// BucketScheme — префикс ссылки на объект в S3 бакете.
const BucketScheme = "s3://"

// Source загружает файл по ссылке (путь, ключ объекта) в память.
//
// Реализации не валидируют файл: это делает Validate на этапе отправки,
// чтобы пользователь увидел превью и причину отказа.
type Source interface {
	Open(ctx context.Context, ref string) (*SelectedFile, error)
}

// MaxReadSize — предел чтения с диска.
//
// Файлы до предела читаются целиком, даже если больше MaxFileSize:
// Validate сообщит их реальный размер как TooLarge.
const MaxReadSize int64 = 64 * 1024 * 1024

// ErrSourceTooLarge возвращается источником для файлов больше MaxReadSize.
var ErrSourceTooLarge = errors.New("file is too large to open")

// LocalSource читает файлы с локального диска (аналог выбора файла / камеры).
type LocalSource struct{}

// Open читает файл целиком.
func (LocalSource) Open(ctx context.Context, ref string) (*SelectedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref = expandHome(strings.TrimSpace(ref))
	if ref == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	info, err := os.Stat(ref)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", ref, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", ref)
	}

	if info.Size() > MaxReadSize {
		return nil, fmt.Errorf("%s: %w (%.2fMB)", ref, ErrSourceTooLarge, float64(info.Size())/1024/1024)
	}

	f, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	defer f.Close()

	// Файл мог вырасти после Stat: читаем не больше предела
	data, err := io.ReadAll(io.LimitReader(f, MaxReadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	if int64(len(data)) > MaxReadSize {
		return nil, fmt.Errorf("%s: %w", ref, ErrSourceTooLarge)
	}
	return NewSelectedFile(ref, data), nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return home + p[1:]
}

// BucketSource скачивает изображения из S3-совместимого хранилища.
type BucketSource struct {
	Client s3storage.ClientInterface
}

// Open скачивает объект по ключу. Ключ принимается как с префиксом s3://, так и без.
func (s BucketSource) Open(ctx context.Context, ref string) (*SelectedFile, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("s3 storage is not configured")
	}
	key := strings.TrimPrefix(strings.TrimSpace(ref), BucketScheme)
	if key == "" {
		return nil, fmt.Errorf("object key is empty")
	}

	data, err := s.Client.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return NewSelectedFile(path.Base(key), data), nil
}

// RouterSource выбирает источник по ссылке: s3://key -> Bucket, иначе Local.
type RouterSource struct {
	Local  Source
	Bucket Source // nil если S3 не настроен
}

// Open делегирует загрузку подходящему источнику.
func (r RouterSource) Open(ctx context.Context, ref string) (*SelectedFile, error) {
	if strings.HasPrefix(strings.TrimSpace(ref), BucketScheme) {
		if r.Bucket == nil {
			return nil, fmt.Errorf("s3 storage is not configured (set s3 section in config)")
		}
		return r.Bucket.Open(ctx, ref)
	}
	local := r.Local
	if local == nil {
		local = LocalSource{}
	}
	return local.Open(ctx, ref)
}
