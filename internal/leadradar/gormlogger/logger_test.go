package gormlogger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
)

func newTestLogger(buf *bytes.Buffer) *GormLogger {
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewGormLogger(slog.New(h), 100*time.Millisecond, true)
}

func TestTrace(t *testing.T) {
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT * FROM form_fields", 3 }

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf).Trace(ctx, time.Now(), query, errors.New("boom"))
		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "err=boom")
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf).Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
		assert.NotContains(t, buf.String(), "level=ERROR")
	})

	t.Run("slow", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf).Trace(ctx, time.Now().Add(-time.Second), query, nil)
		assert.Contains(t, buf.String(), "SLOW SQL")
	})

	t.Run("silent", func(t *testing.T) {
		var buf bytes.Buffer
		l := newTestLogger(&buf).LogMode(gormLog.Silent)
		l.Trace(ctx, time.Now(), query, errors.New("boom"))
		assert.Empty(t, buf.String())
	})

	t.Run("log mode keeps threshold", func(t *testing.T) {
		var buf bytes.Buffer
		l := newTestLogger(&buf).LogMode(gormLog.Info).(*GormLogger)
		assert.Equal(t, 100*time.Millisecond, l.SlowThreshold)
		assert.True(t, l.ParameterizedQueries)
	})
}

func TestParamsFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	sql, params := l.ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)

	l.ParameterizedQueries = false
	_, params = l.ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, []interface{}{1}, params)
}
