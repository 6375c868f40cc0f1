package safe

import (
	"errors"
	"io"
	"log/slog"

	"github.com/kurihiro0119/repo-analyzer/internal/logging"
)

// Close safely closes the resource and logs error if any
func Close(closer io.Closer) {
	if closer != nil {
		if err := closer.Close(); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			logging.Default().Warn("Fail to close resource", slog.Any("error", err))
		}
	}
}
