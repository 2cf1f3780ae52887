// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"io"
	"log/slog"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil пишет пустую строку, чтобы логирование не падало в защитных ветках.
//
// Пример:
//
//	log.Error("failed to create review", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут с именем операции в формате "package.Func".
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

// New логгер для окружения env: текстовый с уровнем debug для local,
// JSON с уровнем info для остальных.
func New(env string, w io.Writer) *slog.Logger {
	if env == "local" || env == "test" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
