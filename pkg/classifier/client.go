// Package classifier — клиент сервиса классификации мусора.
//
// Клиент "тупой" в смысле протокола: один multipart POST на /predict
// и GET на /health. Вся логика подготовки файла (валидация, сжатие)
// выполняется здесь же, до сети, чтобы локальные ошибки никогда
// не порождали запрос.
//
// Повторов нет: одна попытка на отправку. Повтор инициирует пользователь.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ilkoid/gomi-ai/pkg/config"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/imaging"
	"github.com/ilkoid/gomi-ai/pkg/upload"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

// maxResponseSize ограничивает чтение тела ответа.
const maxResponseSize = 4 * 1024 * 1024

// Поля результата, которые не нужны в строке лога.
var logDropFields = []string{
	"description_ja", "description_en",
	"examples_ja", "examples_en",
	"notes_ja", "notes_en",
	"preparation_steps",
}

// HTTPClient интерфейс для выполнения HTTP запросов.
//
// Позволяет мокировать HTTP клиент в тестах (Rule 9).
// Стандартный *http.Client реализует этот интерфейс.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request — подготовленный запрос классификации.
//
// Создаётся один раз на отправку и не изменяется.
type Request struct {
	File     *upload.SelectedFile
	Language gomi.Language
}

// Classifier — порт для оркестратора (реализуется *Client).
type Classifier interface {
	Classify(ctx context.Context, file *upload.SelectedFile, lang gomi.Language) (*gomi.ClassificationResult, error)
}

// Client выполняет запросы к сервису классификации.
type Client struct {
	baseURL        string
	httpClient     HTTPClient // Интерфейс вместо конкретного типа для testability
	healthTimeout  time.Duration
	predictTimeout time.Duration
	limiter        *rate.Limiter
	compressor     *imaging.Compressor
	metrics        *Metrics
	emitter        events.Emitter
}

var _ Classifier = (*Client)(nil)

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент (тесты, прокси).
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCompressor задаёт компрессор изображений.
func WithCompressor(comp *imaging.Compressor) Option {
	return func(c *Client) { c.compressor = comp }
}

// WithMetrics включает Prometheus метрики.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithEmitter подключает получателя событий сжатия.
func WithEmitter(e events.Emitter) Option {
	return func(c *Client) { c.emitter = e }
}

// New создает клиент из конфигурации.
//
// Поля с нулевыми значениями используют дефолты через GetDefaults().
// Timeout задаётся через context на каждый запрос, а не на http.Client,
// поэтому истечение срока всегда распознаётся как KindTimeout.
func New(cfg config.APIConfig, opts ...Option) (*Client, error) {
	cfg = cfg.GetDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api.base_url %q", cfg.BaseURL)
	}

	healthTimeout, predictTimeout, err := cfg.Timeouts()
	if err != nil {
		return nil, err
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(cfg.RateLimit) / 60.0

	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:     &http.Client{},
		healthTimeout:  healthTimeout,
		predictTimeout: predictTimeout,
		limiter:        rate.NewLimiter(rate.Limit(ratePerSec), cfg.BurstLimit),
		compressor:     imaging.NewCompressor(config.ImageProcConfig{}, 0),
		emitter:        events.NopEmitter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL возвращает базовый URL сервиса.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health запрашивает состояние сервиса.
//
// Возвращает декодированное тело ответа или ошибку (не-2xx, сеть, JSON).
func (c *Client) Health(ctx context.Context) (*gomi.HealthStatus, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	status, err := c.health(ctx)
	c.metrics.RecordRequest("health", outcomeLabel(err), time.Since(start))
	return status, err
}

func (c *Client) health(ctx context.Context) (*gomi.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, gomi.NewError(gomi.KindUnknown, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyReadError(ctx, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyResponseError(resp.StatusCode, body)
	}

	var status gomi.HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, gomi.NewError(gomi.KindUnknown, fmt.Errorf("decode health: %w", err))
	}
	return &status, nil
}

// CheckHealth true только если сервис отвечает "healthy" и модель загружена.
//
// Никогда не возвращает ошибку: любая проблема означает false.
func (c *Client) CheckHealth(ctx context.Context) bool {
	status, err := c.Health(ctx)
	if err != nil {
		utils.Warn("Health check failed", "url", c.baseURL, "error", err)
		return false
	}
	return status.IsHealthy()
}

// Classify выполняет полный цикл отправки.
//
// Этапы (строго последовательно):
//  1. upload.Validate — локальная ошибка возвращается без сети
//  2. Сжатие если файл больше порога (ошибка сжатия = оригинал)
//  3. Повторная валидация результата сжатия
//  4. rate limiter + multipart POST {base}/predict?language=<lang>
//  5. Декодирование, Validate и Normalize результата
//
// Все ошибки — *gomi.OperationError.
func (c *Client) Classify(ctx context.Context, file *upload.SelectedFile, lang gomi.Language) (*gomi.ClassificationResult, error) {
	if err := upload.Validate(file); err != nil {
		return nil, err
	}

	prepared := c.prepare(ctx, file)
	if err := upload.Validate(prepared); err != nil {
		return nil, err
	}

	if lang == "" {
		lang = gomi.DefaultLanguage
	}
	req := Request{File: prepared, Language: lang}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.predictTimeout)
	defer cancel()

	result, err := c.predict(ctx, req)
	c.metrics.RecordRequest("predict", outcomeLabel(err), time.Since(start))
	if err != nil {
		utils.Error("Classification failed", "file", req.File.Name, "kind", gomi.KindOf(err), "error", err)
		return nil, err
	}

	utils.Info("Classification succeeded",
		"file", req.File.Name,
		"class", result.PredictedClass,
		"confidence", result.ConfidencePercentage,
		"duration", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// prepare сжимает файл если он больше порога. Никогда не возвращает ошибку.
func (c *Client) prepare(ctx context.Context, file *upload.SelectedFile) *upload.SelectedFile {
	if c.compressor == nil || !c.compressor.ShouldCompress(file.Size()) {
		return file
	}

	out, outcome := c.compressor.Compress(ctx, file)
	c.metrics.RecordCompression(outcome.Applied)

	data := events.CompressionData{
		Applied:      outcome.Applied,
		OriginalSize: outcome.OriginalSize,
		OutputSize:   outcome.OutputSize,
		Width:        outcome.Width,
		Height:       outcome.Height,
	}
	if outcome.Err != nil {
		data.Reason = outcome.Err.Error()
		utils.Warn("Compression skipped, uploading original", "file", file.Name, "error", outcome.Err)
	} else {
		utils.Info("Image compressed",
			"file", file.Name,
			"from", outcome.OriginalSize,
			"to", outcome.OutputSize,
			"size", fmt.Sprintf("%dx%d", outcome.Width, outcome.Height))
	}
	c.emitter.Emit(ctx, events.New(events.EventCompressed, data))

	return out
}

// predict отправляет запрос. ctx уже содержит deadline.
func (c *Client) predict(ctx context.Context, req Request) (*gomi.ClassificationResult, error) {
	// Ждём разрешения от лимитера (блокирует горутину, если превысили лимит)
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			return nil, gomi.NewError(gomi.KindUnknown, err)
		}
		// Ожидание не укладывается в deadline запроса
		return nil, gomi.NewError(gomi.KindTimeout, err)
	}

	body, contentType, err := encodeMultipart(req.File)
	if err != nil {
		return nil, gomi.NewError(gomi.KindUnknown, err)
	}

	u := fmt.Sprintf("%s/predict?%s", c.baseURL, url.Values{"language": {string(req.Language)}}.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, gomi.NewError(gomi.KindUnknown, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	c.metrics.RecordUpload(req.File.Size())
	utils.Debug("Sending predict request", "url", u, "file", req.File.Name, "bytes", req.File.Size())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyReadError(ctx, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		utils.Debug("Predict error response",
			"status", resp.StatusCode,
			"body", utils.SanitizeForLog(respBody, nil, 300))
		return nil, classifyResponseError(resp.StatusCode, respBody)
	}

	utils.Debug("Predict response", "body", utils.SanitizeForLog(respBody, logDropFields, 500))

	var result gomi.ClassificationResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, gomi.NewError(gomi.KindUnknown, fmt.Errorf("decode result: %w", err))
	}
	if err := result.Validate(); err != nil {
		return nil, gomi.NewError(gomi.KindUnknown, err)
	}
	result.Normalize()

	return &result, nil
}

// encodeMultipart собирает тело с единственным полем "file".
//
// Content-Type части — заявленный MIME тип файла: бэкенд отклоняет
// части, тип которых не начинается с image/.
func encodeMultipart(file *upload.SelectedFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	h.Set("Content-Type", file.MIMEType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write multipart part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return gomi.KindOf(err).String()
}
