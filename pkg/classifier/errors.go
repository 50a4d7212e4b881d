package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

// classifyResponseError превращает не-2xx ответ в OperationError.
//
// Приоритет:
//  1. JSON тело с непустым "error" (или строковым "detail" в стиле FastAPI)
//     -> KindServerReported, сообщение сервера без изменений
//  2. 413 -> KindPayloadTooLarge
//  3. 504 -> KindGatewayTimeout
//  4. остальное -> KindUnknown
func classifyResponseError(status int, body []byte) *gomi.OperationError {
	if msg, detail, ok := serverMessage(body); ok {
		return &gomi.OperationError{
			Kind:    gomi.KindServerReported,
			Message: msg,
			Detail:  detail,
			Err:     fmt.Errorf("status %d", status),
		}
	}

	cause := fmt.Errorf("status %d: %s", status, utils.SanitizeForLog(body, nil, 200))
	switch status {
	case http.StatusRequestEntityTooLarge:
		return gomi.NewError(gomi.KindPayloadTooLarge, cause)
	case http.StatusGatewayTimeout:
		return gomi.NewError(gomi.KindGatewayTimeout, cause)
	default:
		return gomi.NewError(gomi.KindUnknown, cause)
	}
}

// serverMessage извлекает сообщение из тела ошибки.
//
// Поддерживаются два формата бэкенда:
//
//	{"error": "...", "detail": ..., "timestamp": "..."}  (обработчик ошибок)
//	{"detail": "..."}                                     (HTTPException)
func serverMessage(body []byte) (msg, detail string, ok bool) {
	var apiErr gomi.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return "", "", false
	}

	detailText := ""
	if s, isString := apiErr.Detail.(string); isString {
		detailText = s
	} else if apiErr.Detail != nil {
		if raw, err := json.Marshal(apiErr.Detail); err == nil {
			detailText = string(raw)
		}
	}

	if strings.TrimSpace(apiErr.Error) != "" {
		return apiErr.Error, detailText, true
	}
	if s, isString := apiErr.Detail.(string); isString && strings.TrimSpace(s) != "" {
		return s, "", true
	}
	return "", "", false
}

// classifyTransportError превращает ошибку без ответа сервера в OperationError.
//
// Истёкший deadline (наш timeout) -> KindTimeout, отменённый вызывающим
// context -> KindUnknown, всё остальное (refused, DNS, reset) -> KindUnreachable.
func classifyTransportError(ctx context.Context, err error) *gomi.OperationError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return gomi.NewError(gomi.KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return gomi.NewError(gomi.KindTimeout, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return gomi.NewError(gomi.KindUnknown, err)
	}
	return gomi.NewError(gomi.KindUnreachable, err)
}

// classifyReadError — ответ пришёл, но тело не дочиталось.
//
// Истёкший deadline по-прежнему KindTimeout. Иначе решает статус:
// не-2xx размечается как обычный ответ без тела (413, 504 сохраняются),
// оборванное тело успешного ответа -> KindUnknown.
func classifyReadError(ctx context.Context, status int, err error) *gomi.OperationError {
	if opErr := classifyTransportError(ctx, err); opErr.Kind != gomi.KindUnreachable {
		return opErr
	}
	if status < 200 || status > 299 {
		opErr := classifyResponseError(status, nil)
		opErr.Err = fmt.Errorf("status %d: read body: %w", status, err)
		return opErr
	}
	return gomi.NewError(gomi.KindUnknown, fmt.Errorf("read body: %w", err))
}
