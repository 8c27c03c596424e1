package logutil

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	sloggraylog "github.com/samber/slog-graylog/v2"
	slogmulti "github.com/samber/slog-multi"
	"golang.org/x/term"
)

// HandlerOptions configures the process wide log handler.
type HandlerOptions struct {
	Level       slog.Leveler
	JSON        bool
	Writer      io.Writer
	GELFAddress string
}

// NewHandler creates a colored console handler or a JSON handler, if
// requested. Colors are only used when writing to a terminal. With a GELF
// address, all records are also sent to Graylog.
func NewHandler(opts HandlerOptions) (slog.Handler, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.StampMilli,
			NoColor:    !isTerminal(w),
		})
	}

	if opts.GELFAddress == "" {
		return handler, nil
	}

	gw, err := gelf.NewWriter(opts.GELFAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to graylog at %s", opts.GELFAddress)
	}

	graylog := sloggraylog.Option{
		Level:  level,
		Writer: gw,
	}.NewGraylogHandler()

	return slogmulti.Fanout(handler, graylog), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
