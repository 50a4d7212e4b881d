// Package gomi содержит доменные типы классификации мусора.
//
// Типы зеркалят JSON контракт сервиса классификации (snake_case поля)
// и используются всеми слоями: classifier, state, orchestrator, ui.
//
// Package gomi не зависит ни от одного другого пакета модуля.
package gomi

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Language — предпочтительный язык ответа сервиса.
type Language string

const (
	LangJapanese Language = "ja"
	LangEnglish  Language = "en"
	LangBoth     Language = "both"
)

// DefaultLanguage используется при старте приложения.
const DefaultLanguage = LangJapanese

// ParseLanguage разбирает строку в Language.
//
// Допустимые значения: "ja", "en", "both" (регистр не важен).
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangJapanese:
		return LangJapanese, nil
	case LangEnglish:
		return LangEnglish, nil
	case LangBoth:
		return LangBoth, nil
	default:
		return "", fmt.Errorf("unsupported language %q (want ja, en or both)", s)
	}
}

// Next возвращает следующий язык по кругу ja -> en -> both -> ja.
// Используется переключателем языка в UI.
func (l Language) Next() Language {
	switch l {
	case LangJapanese:
		return LangEnglish
	case LangEnglish:
		return LangBoth
	default:
		return LangJapanese
	}
}

// ConfidenceLevel — трёхуровневая оценка уверенности модели.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Пороги уровней уверенности (совпадают с бэкендом).
const (
	HighConfidenceThreshold   = 0.80
	MediumConfidenceThreshold = 0.60
)

// LevelFor вычисляет уровень уверенности по числовому значению.
func LevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= HighConfidenceThreshold:
		return ConfidenceHigh
	case confidence >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// FormatPercentage форматирует уверенность как "92.0%".
func FormatPercentage(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}

// PreparationStep — шаг подготовки мусора к выносу (на двух языках).
type PreparationStep struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
}

// ClassificationResult — ответ сервиса классификации.
//
// Неизменяем после получения: владельцем является state.Store
// до замены или сброса.
type ClassificationResult struct {
	// Классификация
	PredictedClass       string          `json:"predicted_class"`
	Confidence           float64         `json:"confidence"`
	ConfidencePercentage string          `json:"confidence_percentage"`
	ConfidenceLevel      ConfidenceLevel `json:"confidence_level"`
	NeedsConfirmation    bool            `json:"needs_confirmation"`

	// Названия
	JapaneseName string `json:"japanese_name"`
	Hiragana     string `json:"hiragana"`
	EnglishName  string `json:"english_name"`

	// Описания и примеры
	DescriptionJA string   `json:"description_ja"`
	DescriptionEN string   `json:"description_en"`
	ExamplesJA    []string `json:"examples_ja"`
	ExamplesEN    []string `json:"examples_en"`

	// Вывоз
	CollectionDayJA     string `json:"collection_day_ja"`
	CollectionDayEN     string `json:"collection_day_en"`
	CollectionFrequency string `json:"collection_frequency"`

	// Инструкции
	PreparationSteps []PreparationStep `json:"preparation_steps"`
	NotesJA          []string          `json:"notes_ja"`
	NotesEN          []string          `json:"notes_en"`

	// Отображение
	Color string `json:"color"`
	Icon  string `json:"icon"`

	// Метаданные
	AllProbabilities map[string]float64 `json:"all_probabilities"`
	ProcessingTimeMs float64            `json:"processing_time_ms"`
	Timestamp        string             `json:"timestamp"`
}

// Validate проверяет минимальные инварианты ответа.
func (r *ClassificationResult) Validate() error {
	if r == nil {
		return fmt.Errorf("empty classification result")
	}
	if strings.TrimSpace(r.PredictedClass) == "" {
		return fmt.Errorf("predicted_class is empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v is outside [0,1]", r.Confidence)
	}
	return nil
}

// Normalize заполняет производные поля, если сервис их не прислал.
//
// Значения, пришедшие от сервиса, не перезаписываются.
func (r *ClassificationResult) Normalize() {
	if r.ConfidencePercentage == "" {
		r.ConfidencePercentage = FormatPercentage(r.Confidence)
	}
	if r.ConfidenceLevel == "" {
		r.ConfidenceLevel = LevelFor(r.Confidence)
	}
}

// ProcessingTime возвращает серверное время обработки.
func (r *ClassificationResult) ProcessingTime() time.Duration {
	return time.Duration(r.ProcessingTimeMs * float64(time.Millisecond))
}

// Probability — одна строка распределения вероятностей.
type Probability struct {
	Category string
	Value    float64
}

// TopProbabilities возвращает n самых вероятных категорий по убыванию.
// n <= 0 означает "все".
func (r *ClassificationResult) TopProbabilities(n int) []Probability {
	out := make([]Probability, 0, len(r.AllProbabilities))
	for k, v := range r.AllProbabilities {
		out = append(out, Probability{Category: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].Category < out[j].Category
		}
		return out[i].Value > out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DisplayName возвращает название категории на выбранном языке.
func (r *ClassificationResult) DisplayName(lang Language) string {
	return pick(lang, r.JapaneseName, r.EnglishName)
}

// Description возвращает описание категории на выбранном языке.
func (r *ClassificationResult) Description(lang Language) string {
	return pick(lang, r.DescriptionJA, r.DescriptionEN)
}

// CollectionDay возвращает день вывоза на выбранном языке.
func (r *ClassificationResult) CollectionDay(lang Language) string {
	return pick(lang, r.CollectionDayJA, r.CollectionDayEN)
}

// Steps возвращает шаги подготовки на выбранном языке, в исходном порядке.
func (r *ClassificationResult) Steps(lang Language) []string {
	out := make([]string, 0, len(r.PreparationSteps))
	for _, s := range r.PreparationSteps {
		out = append(out, pick(lang, s.Japanese, s.English))
	}
	return out
}

// Notes возвращает примечания на выбранном языке.
func (r *ClassificationResult) Notes(lang Language) []string {
	switch lang {
	case LangEnglish:
		return r.NotesEN
	case LangBoth:
		return append(append([]string{}, r.NotesJA...), r.NotesEN...)
	default:
		return r.NotesJA
	}
}

func pick(lang Language, ja, en string) string {
	switch lang {
	case LangEnglish:
		return en
	case LangBoth:
		if ja == "" {
			return en
		}
		if en == "" {
			return ja
		}
		return ja + " / " + en
	default:
		return ja
	}
}

// HealthStatus — ответ health endpoint.
type HealthStatus struct {
	Status      string `json:"status"`
	AppName     string `json:"app_name"`
	Version     string `json:"version"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}

// HealthyStatus — значение поля status у здорового сервиса.
const HealthyStatus = "healthy"

// IsHealthy true только если сервис здоров И модель загружена.
func (h *HealthStatus) IsHealthy() bool {
	return h != nil && h.Status == HealthyStatus && h.ModelLoaded
}

// APIError — тело ошибки сервиса.
//
// Detail у FastAPI бывает строкой или списком ошибок валидации,
// поэтому хранится как any.
type APIError struct {
	Error     string `json:"error"`
	Detail    any    `json:"detail,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
