package telegram

import (
	"fmt"
	"strings"

	applog "spesebot/internal/log"
)

// botLogger routes the Bot API library's log lines into slog at debug level.
type botLogger struct {
	logger *applog.Logger
}

func (b botLogger) Println(v ...interface{}) {
	b.logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (b botLogger) Printf(format string, v ...interface{}) {
	b.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
