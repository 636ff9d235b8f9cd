// Package logging constructs the JSON slog.Logger used by cmd/aescd,
// renaming slog's default keys to the timestamp/severity/message triple
// expected by the log aggregator this client's logs are shipped to.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds a JSON *slog.Logger tagged with service and (if non-empty)
// env, with the time/level/message keys renamed to timestamp/severity/
// message.
func Setup(service, env string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "timestamp"
			case slog.LevelKey:
				attr.Key = "severity"
				attr.Value = slog.StringValue(strings.ToUpper(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	})

	attrs := []any{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	return slog.New(handler).With(attrs...)
}
