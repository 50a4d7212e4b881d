// Package utils предоставляет простой файловый логгер для TUI приложений.
//
// Логгер создаёт .log файл с timestamp в имени. TUI занимает терминал,
// поэтому весь диагностический вывод идёт в файл.
// Thread-safe через sync.Mutex. До InitLogger все вызовы — no-op,
// поэтому библиотечный код и тесты могут логировать без инициализации.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	logFile      *os.File
	logPath      string
	logMutex     sync.Mutex
	debugEnabled bool
)

// LogPrefix — префикс имени лог-файла.
const LogPrefix = "gomi"

// InitLogger создает/открывает .log файл в директории dir.
//
// Имя файла: gomi-YYYY-MM-DD-HH-MM.log (например, gomi-2026-10-19-15-30.log).
// Пустой dir — текущая директория. Повторный вызов ничего не делает.
func InitLogger(dir string) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		return nil
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	timestamp := time.Now().Format("2006-01-02-15-04")
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.log", LogPrefix, timestamp))

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	logPath = filename

	// Пишем напрямую без Info: мьютекс уже захвачен
	writeLine(formatLine("INFO", "Logger initialized", "file", filename))
	return nil
}

// SetDebug включает или выключает DEBUG сообщения.
func SetDebug(enabled bool) {
	logMutex.Lock()
	defer logMutex.Unlock()
	debugEnabled = enabled
}

// LogPath возвращает путь к текущему лог-файлу (пусто до InitLogger).
func LogPath() string {
	logMutex.Lock()
	defer logMutex.Unlock()
	return logPath
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log("INFO", msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log("ERROR", msg, keyvals...)
}

// Debug - отладочное сообщение. Пишется только после SetDebug(true).
func Debug(msg string, keyvals ...any) {
	log("DEBUG", msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log("WARN", msg, keyvals...)
}

func log(level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile == nil {
		return
	}
	if level == "DEBUG" && !debugEnabled {
		return
	}
	writeLine(formatLine(level, msg, keyvals...))
}

// formatLine собирает строку лога.
//
// Формат: [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2=value2
// Значения с пробелами берутся в кавычки. Непарный последний ключ
// пишется как key=(missing).
func formatLine(level, msg string, keyvals ...any) string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("] ")
	sb.WriteString(level)
	sb.WriteString(": ")
	sb.WriteString(msg)

	for i := 0; i < len(keyvals); i += 2 {
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprint(keyvals[i]))
		sb.WriteString("=")
		if i+1 >= len(keyvals) {
			sb.WriteString("(missing)")
			break
		}
		v := fmt.Sprint(keyvals[i+1])
		if strings.ContainsAny(v, " \t\n") {
			v = fmt.Sprintf("%q", v)
		}
		sb.WriteString(v)
	}
	sb.WriteString("\n")
	return sb.String()
}

// writeLine пишет строку в файл. Вызывается под logMutex.
// При ошибке записи fallback на stderr.
func writeLine(line string) {
	if _, err := logFile.WriteString(line); err != nil {
		fmt.Fprint(os.Stderr, line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
		return
	}
	if err := logFile.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
	}
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
		logPath = ""
	}
}
