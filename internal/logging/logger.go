package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/clog/hooks"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
)

// ErrInvalidOption is returned for unknown log formats or levels
var ErrInvalidOption = errors.New("invalid option")

// githubToken matches personal access, OAuth, app and fine-grained GitHub tokens
var githubToken = regexp.MustCompile(`\b(gh[pousr]_[A-Za-z0-9]{20,}|github_pat_[A-Za-z0-9_]{20,})\b`)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, nil))

func init() {
	_ = Configure("text", "info", "stdout")
}

// Default returns the default logger
func Default() *slog.Logger {
	return defaultLogger
}

// Configure replaces the default logger. format is "text" or "json", output is
// "stdout", "stderr" or a file path.
func Configure(logFormat, logLevel, logOutput string) error {
	level, ok := levels[logLevel]
	if !ok {
		return goerr.Wrap(ErrInvalidOption, "invalid log level", goerr.V("value", logLevel))
	}

	w, err := openOutput(logOutput)
	if err != nil {
		return err
	}

	handler, err := newHandler(logFormat, level, w)
	if err != nil {
		return err
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return nil
}

// redactor hides credentials: fields tagged `masq:"secret"`, the configured
// GitHub token and anything shaped like a GitHub token
func redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("GitHubToken"),
		masq.WithRegex(githubToken),
	)
}

func openOutput(name string) (io.Writer, error) {
	switch name {
	case "stdout", "-":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	fd, err := os.Create(filepath.Clean(name))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", name))
	}
	return fd, nil
}

func newHandler(format string, level slog.Level, w io.Writer) (slog.Handler, error) {
	switch format {
	case "text":
		return clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColorMap(&clog.ColorMap{
				Level: map[slog.Level]*color.Color{
					slog.LevelDebug: color.New(color.FgHiBlack),
					slog.LevelInfo:  color.New(color.FgGreen, color.Bold),
					slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
					slog.LevelError: color.New(color.FgRed, color.Bold),
				},
				LevelDefault: color.New(color.FgBlue),
				Time:         color.New(color.FgHiBlack),
				Message:      color.New(color.FgWhite, color.Bold),
				AttrKey:      color.New(color.FgCyan),
				AttrValue:    color.New(color.FgWhite),
			}),
			clog.WithAttrHook(hooks.GoErr()),
			clog.WithReplaceAttr(redactor()),
		), nil
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redactor(),
		}), nil
	}
	return nil, goerr.Wrap(ErrInvalidOption, "invalid log format, should be 'json' or 'text'", goerr.V("value", format))
}
