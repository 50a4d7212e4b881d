package utils

import (
	"encoding/json"
	"strings"
	"unicode"
)

// SanitizeForLog готовит тело HTTP ответа к записи в одну строку лога.
//
// Для JSON:
//   - удаляет поля из dropFields на всех уровнях вложенности
//   - удаляет пустые строки, nil, пустые массивы и объекты
//   - сериализует компактно, без отступов
//
// Не-JSON тело очищается от управляющих символов.
// Результат обрезается до limit рун (0 — без ограничения).
func SanitizeForLog(raw []byte, dropFields []string, limit int) string {
	var out string

	var data any
	if err := json.Unmarshal(raw, &data); err == nil {
		cleaned := cleanValue(data, dropFields)
		if b, err := json.Marshal(cleaned); err == nil {
			out = string(b)
		}
	}
	if out == "" {
		out = stripControl(string(raw))
	}

	return Truncate(out, limit)
}

// Truncate обрезает строку до limit рун, добавляя "...".
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// cleanValue рекурсивно очищает значение от лишних полей и пустых значений.
// Возвращает nil если после очистки ничего не осталось.
func cleanValue(value any, dropFields []string) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, item := range v {
			if shouldDrop(key, dropFields) {
				continue
			}
			if cleaned := cleanValue(item, dropFields); cleaned != nil {
				result[key] = cleaned
			}
		}
		if len(result) == 0 {
			return nil
		}
		return result
	case []any:
		result := make([]any, 0, len(v))
		for _, item := range v {
			if cleaned := cleanValue(item, dropFields); cleaned != nil {
				result = append(result, cleaned)
			}
		}
		if len(result) == 0 {
			return nil
		}
		return result
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return v
	default:
		// nil, числа, bool
		return v
	}
}

// shouldDrop проверяет, нужно ли удалить поле.
func shouldDrop(key string, dropFields []string) bool {
	for _, field := range dropFields {
		if key == field {
			return true
		}
	}
	return false
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
