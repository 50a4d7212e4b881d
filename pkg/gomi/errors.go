package gomi

import (
	"errors"
	"fmt"
)

// ErrorKind — закрытая таксономия ошибок пайплайна.
//
// Ни одна ошибка не повторяется автоматически: повтор — это всегда
// новая отправка, инициированная пользователем.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnsupportedType
	KindEmptyFile
	KindTooLarge
	KindServerReported
	KindTimeout
	KindUnreachable
	KindPayloadTooLarge
	KindGatewayTimeout
)

// String возвращает строковый идентификатор вида ошибки.
func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedType:
		return "unsupported_type"
	case KindEmptyFile:
		return "empty_file"
	case KindTooLarge:
		return "too_large"
	case KindServerReported:
		return "server_reported"
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindGatewayTimeout:
		return "gateway_timeout"
	default:
		return "unknown"
	}
}

// IsLocal true для ошибок, обнаруженных до сетевого вызова.
func (k ErrorKind) IsLocal() bool {
	return k == KindUnsupportedType || k == KindEmptyFile || k == KindTooLarge
}

// HumanMessage возвращает человекочитаемое сообщение для вида ошибки.
//
// Для KindServerReported и KindTooLarge реальный текст формируется
// в месте возникновения (сообщение сервера, фактический размер файла),
// здесь только fallback.
func (k ErrorKind) HumanMessage(lang Language) string {
	if lang == LangJapanese {
		return humanJA[k]
	}
	return humanEN[k]
}

var humanEN = map[ErrorKind]string{
	KindUnsupportedType: "Invalid file type. Please upload JPEG, PNG, or WEBP images.",
	KindEmptyFile:       "File is empty. Please select a valid image.",
	KindTooLarge:        "File too large. Maximum size is 10MB.",
	KindServerReported:  "Classification failed",
	KindTimeout:         "Request timeout. The server took too long to respond. Please try with a smaller image or try again later.",
	KindUnreachable:     "Cannot connect to server. The backend might be starting up. Please wait a moment and try again.",
	KindPayloadTooLarge: "Image file is too large. Please use a smaller image.",
	KindGatewayTimeout:  "Gateway timeout. The server is taking too long. Please try again.",
	KindUnknown:         "An unexpected error occurred. Please try again.",
}

var humanJA = map[ErrorKind]string{
	KindUnsupportedType: "対応していないファイル形式です。JPEG、PNG、WEBP画像をアップロードしてください。",
	KindEmptyFile:       "ファイルが空です。有効な画像を選択してください。",
	KindTooLarge:        "ファイルが大きすぎます。最大サイズは10MBです。",
	KindServerReported:  "分類に失敗しました",
	KindTimeout:         "タイムアウトしました。小さい画像で試すか、しばらくしてから再試行してください。",
	KindUnreachable:     "サーバーに接続できません。起動中の可能性があります。少し待ってから再試行してください。",
	KindPayloadTooLarge: "画像ファイルが大きすぎます。小さい画像を使用してください。",
	KindGatewayTimeout:  "ゲートウェイタイムアウトです。もう一度お試しください。",
	KindUnknown:         "予期しないエラーが発生しました。もう一度お試しください。",
}

// Sentinel ошибки для errors.Is().
//
// Пример:
//
//	if errors.Is(err, gomi.ErrTimeout) {
//	    // предложить повтор
//	}
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
	ErrTooLarge        = errors.New("file too large")
	ErrServerReported  = errors.New("server reported error")
	ErrTimeout         = errors.New("request timeout")
	ErrUnreachable     = errors.New("server unreachable")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrGatewayTimeout  = errors.New("gateway timeout")
	ErrUnknown         = errors.New("unknown error")
)

var sentinels = map[ErrorKind]error{
	KindUnsupportedType: ErrUnsupportedType,
	KindEmptyFile:       ErrEmptyFile,
	KindTooLarge:        ErrTooLarge,
	KindServerReported:  ErrServerReported,
	KindTimeout:         ErrTimeout,
	KindUnreachable:     ErrUnreachable,
	KindPayloadTooLarge: ErrPayloadTooLarge,
	KindGatewayTimeout:  ErrGatewayTimeout,
	KindUnknown:         ErrUnknown,
}

// OperationError — ошибка пайплайна с видом и сообщением для пользователя.
//
// Поддерживает errors.Is() с sentinel ошибкой своего вида
// и errors.Unwrap() для исходной причины.
type OperationError struct {
	Kind    ErrorKind
	Message string // Сообщение для пользователя
	Detail  string // Дополнительная информация (detail сервера, статус)
	Err     error  // Исходная причина (может быть nil)
}

// NewError создаёт OperationError с дефолтным английским сообщением вида.
func NewError(kind ErrorKind, cause error) *OperationError {
	return &OperationError{Kind: kind, Message: kind.HumanMessage(LangEnglish), Err: cause}
}

func (e *OperationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.HumanMessage(LangEnglish)
}

// Unwrap возвращает исходную причину.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is реализует errors.Is() для sentinel ошибок вида.
func (e *OperationError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// Localized возвращает сообщение для выбранного языка.
//
// Сообщения, сформированные по месту (сервер, размер файла), возвращаются
// как есть: переводить их нечем.
func (e *OperationError) Localized(lang Language) string {
	if lang == LangJapanese && e.Message == e.Kind.HumanMessage(LangEnglish) {
		return e.Kind.HumanMessage(LangJapanese)
	}
	return e.Error()
}

// KindOf возвращает вид ошибки или KindUnknown для посторонних ошибок.
func KindOf(err error) ErrorKind {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return KindUnknown
}

// AsOperationError приводит любую ошибку к *OperationError.
//
// Посторонние ошибки становятся KindUnknown с сохранением причины.
func AsOperationError(err error) *OperationError {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}
	return NewError(KindUnknown, err)
}

// TooLargeError формирует ошибку превышения размера с фактическим размером в MB.
func TooLargeError(size int64, limit int64) *OperationError {
	return &OperationError{
		Kind: KindTooLarge,
		Message: fmt.Sprintf("File too large. Maximum size is %dMB. Your file is %.2fMB.",
			limit/(1024*1024), float64(size)/1024/1024),
	}
}
