package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferHandler(opts PrettyHandlerOptions) (*PrettyHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrettyHandler(&buf, opts), &buf
}

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Handler is fully initialized with default options", func(t *testing.T) {
		handler, _ := newBufferHandler(PrettyHandlerOptions{})

		assert.NotNil(t, handler)
		assert.NotNil(t, handler.Handler, "Inner slog handler should be set")
		assert.NotNil(t, handler.l, "Output logger should be set")
	})

	t.Run("Handler accepts custom level and source options", func(t *testing.T) {
		handler, _ := newBufferHandler(PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			},
		})

		assert.NotNil(t, handler)
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	levelCases := []struct {
		name    string
		level   slog.Level
		label   string
		message string
		attr    slog.Attr
		want    []string
	}{
		{
			name:    "Debug records carry the DEBUG label and attributes",
			level:   slog.LevelDebug,
			label:   "DEBUG:",
			message: "scoring chunk set",
			attr:    slog.Float64("overall", 0.78),
			want:    []string{"overall", "0.78"},
		},
		{
			name:    "Info records carry the INFO label and attributes",
			level:   slog.LevelInfo,
			label:   "INFO:",
			message: "indexed document",
			attr:    slog.Int("concepts", 17),
			want:    []string{"concepts", "17"},
		},
		{
			name:    "Warn records carry the WARN label and attributes",
			level:   slog.LevelWarn,
			label:   "WARN:",
			message: "corrupt cache file, resetting",
			attr:    slog.Bool("reset", true),
			want:    []string{"reset", "true"},
		},
		{
			name:    "Error records carry the ERROR label and attributes",
			level:   slog.LevelError,
			label:   "ERROR:",
			message: "failed to persist knowledge graph",
			attr:    slog.String("path", "concepts.json"),
			want:    []string{"path", "concepts.json"},
		},
	}

	for _, c := range levelCases {
		t.Run(c.name, func(t *testing.T) {
			handler, buf := newBufferHandler(PrettyHandlerOptions{
				SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
			})

			record := slog.NewRecord(time.Now(), c.level, c.message, 0)
			record.AddAttrs(c.attr)

			err := handler.Handle(ctx, record)

			assert.NoError(t, err)
			output := buf.String()
			assert.Contains(t, output, c.label)
			assert.Contains(t, output, c.message)
			for _, fragment := range c.want {
				assert.Contains(t, output, fragment)
			}
		})
	}

	t.Run("Record without attributes prints an empty attribute object", func(t *testing.T) {
		handler, buf := newBufferHandler(PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "cache hit", 0)

		assert.NoError(t, handler.Handle(ctx, record))
		assert.Contains(t, buf.String(), "cache hit")
		assert.Contains(t, buf.String(), "{}")
	})

	t.Run("Record with several attributes prints them all", func(t *testing.T) {
		handler, buf := newBufferHandler(PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "loaded knowledge graph", 0)
		record.AddAttrs(
			slog.String("document_id", "doc-7"),
			slog.Int("edges", 204),
			slog.Bool("from_cache", false),
		)

		assert.NoError(t, handler.Handle(ctx, record))
		output := buf.String()
		for _, fragment := range []string{"document_id", "doc-7", "edges", "204", "from_cache", "false"} {
			assert.Contains(t, output, fragment)
		}
	})

	t.Run("Nested attribute values are rendered", func(t *testing.T) {
		handler, buf := newBufferHandler(PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "batch finished", 0)
		record.AddAttrs(slog.Any("stats", map[string]interface{}{
			"documents": 3,
		}))

		assert.NoError(t, handler.Handle(ctx, record))
		assert.Contains(t, buf.String(), "stats")
		assert.Contains(t, buf.String(), "documents")
	})

	t.Run("Timestamp is printed as bracketed wall clock time", func(t *testing.T) {
		handler, buf := newBufferHandler(PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "expanding traversal", 0)

		assert.NoError(t, handler.Handle(ctx, record))
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String())
	})
}

func TestPrettyHandlerOptions(t *testing.T) {
	t.Run("All slog options can be carried through", func(t *testing.T) {
		handler, _ := newBufferHandler(PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				AddSource: true,
				Level:     slog.LevelDebug,
				ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
					return a
				},
			},
		})

		assert.NotNil(t, handler)
	})

	t.Run("Zero value options are usable", func(t *testing.T) {
		handler, _ := newBufferHandler(PrettyHandlerOptions{})

		assert.NotNil(t, handler)
	})
}
