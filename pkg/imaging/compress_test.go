package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/gomi-ai/pkg/config"
	"github.com/ilkoid/gomi-ai/pkg/upload"
)

// noisePNG генерирует плохо сжимаемое PNG изображение.
func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rnd := rand.New(rand.NewSource(42))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(rnd.Intn(256))
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// hugeHeaderPNG собирает PNG, который только заявляет размер w×h:
// сигнатура, IHDR и паддинг до size байт. Пиксельных данных нет.
func hugeHeaderPNG(w, h uint32, size int) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(ihdr)))
	buf.Write(length[:])
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(chunk))
	buf.Write(crc[:])

	if pad := size - buf.Len(); pad > 0 {
		buf.Write(make([]byte, pad))
	}
	return buf.Bytes()
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 4000, 3000, 1920, 1440},
		{"portrait", 3000, 4000, 1440, 1920},
		{"square", 2500, 2500, 1920, 1920},
		{"exact max", 1920, 1080, 1920, 1080},
		{"small", 800, 600, 800, 600},
		{"rounding", 3000, 1001, 1920, 641},
		{"thin strip", 10000, 2, 1920, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetSize(tt.w, tt.h, 1920)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestShouldCompress(t *testing.T) {
	c := NewCompressor(config.ImageProcConfig{}, 0)

	assert.False(t, c.ShouldCompress(4*1024*1024))
	assert.False(t, c.ShouldCompress(DefaultThreshold))
	assert.True(t, c.ShouldCompress(DefaultThreshold+1))
	assert.Equal(t, DefaultMaxDimension, c.MaxDimension)
	assert.Equal(t, DefaultQuality, c.Quality)
}

func TestCompress_ResizesWideImage(t *testing.T) {
	data := noisePNG(t, 3000, 1000)
	file := &upload.SelectedFile{Name: "wide.png", MIMEType: upload.MIMEPNG, Data: data}
	c := &Compressor{Threshold: 1, MaxDimension: 1920, Quality: 80}

	out, outcome := c.Compress(context.Background(), file)

	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, "wide.png", out.Name)
	assert.Equal(t, upload.MIMEJPEG, out.MIMEType)
	assert.Less(t, out.Size(), file.Size())

	decoded, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 1920, decoded.Bounds().Dx())
	assert.Equal(t, 640, decoded.Bounds().Dy())
	assert.Equal(t, 3000, outcome.OriginalWidth)
	assert.Equal(t, 640, outcome.Height)
}

func TestCompress_TransparentBecomesWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0 // полностью прозрачный
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	c := &Compressor{Threshold: 1, MaxDimension: 1920, Quality: 80}
	encoded, err := c.render(img, 64, 64)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(32, 32).RGBA()
	white := color.White
	wr, wg, wb, _ := white.RGBA()
	assert.InDelta(t, wr, r, 0x0400)
	assert.InDelta(t, wg, g, 0x0400)
	assert.InDelta(t, wb, b, 0x0400)
}

func TestCompress_FallsBackOnUndecodable(t *testing.T) {
	file := &upload.SelectedFile{Name: "broken.jpg", MIMEType: upload.MIMEJPEG, Data: []byte("definitely not a jpeg")}
	c := &Compressor{Threshold: 1, MaxDimension: 1920, Quality: 80}

	out, outcome := c.Compress(context.Background(), file)

	assert.Same(t, file, out)
	assert.False(t, outcome.Applied)
	assert.Error(t, outcome.Err)
	assert.Equal(t, file.Size(), outcome.OutputSize)
}

func TestCompress_RefusesHugeDeclaredDimensions(t *testing.T) {
	data := hugeHeaderPNG(60000, 60000, 6*1024*1024)
	file := &upload.SelectedFile{Name: "bomb.png", MIMEType: upload.MIMEPNG, Data: data}
	c := NewCompressor(config.ImageProcConfig{}, 0)
	require.True(t, c.ShouldCompress(file.Size()))

	out, outcome := c.Compress(context.Background(), file)

	assert.Same(t, file, out)
	assert.False(t, outcome.Applied)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "exceeds")
	assert.Equal(t, 60000, outcome.OriginalWidth)
	assert.Equal(t, file.Size(), outcome.OutputSize)
}

func TestCompress_KeepsOriginalWhenNotSmaller(t *testing.T) {
	// Маленький однотонный PNG сжимается лучше, чем JPEG
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	file := &upload.SelectedFile{Name: "tiny.png", MIMEType: upload.MIMEPNG, Data: buf.Bytes()}

	c := &Compressor{Threshold: 1, MaxDimension: 1920, Quality: 80}
	out, outcome := c.Compress(context.Background(), file)

	assert.Same(t, file, out)
	assert.False(t, outcome.Applied)
	assert.Error(t, outcome.Err)
}

func TestCompress_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	file := &upload.SelectedFile{Name: "a.png", MIMEType: upload.MIMEPNG, Data: noisePNG(t, 32, 32)}
	c := &Compressor{Threshold: 1, MaxDimension: 1920, Quality: 80}

	out, outcome := c.Compress(ctx, file)
	assert.Same(t, file, out)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}

func TestDimensions(t *testing.T) {
	w, h, format, err := Dimensions(noisePNG(t, 40, 30))
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
	assert.Equal(t, "png", format)

	_, _, _, err = Dimensions([]byte("nope"))
	assert.Error(t, err)
}
