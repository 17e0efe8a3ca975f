package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records with attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("dataset loaded", slog.String("source", "local"))
		logger.Error("store failed", slog.Int("code", 500))

		records := handler.GetRecords()
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if !handler.ContainsMessage("dataset loaded") {
			t.Error("expected to find 'dataset loaded'")
		}
		if records[0].Attrs["source"] != "local" {
			t.Errorf("expected source=local, got %v", records[0].Attrs["source"])
		}
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		if got := len(handler.GetRecordsByLevel(slog.LevelInfo)); got != 1 {
			t.Errorf("expected 1 info record, got %d", got)
		}
		if got := len(handler.GetRecordsByLevel(slog.LevelError)); got != 1 {
			t.Errorf("expected 1 error record, got %d", got)
		}
		if handler.Count() != 4 {
			t.Errorf("expected 4 records total, got %d", handler.Count())
		}
	})

	t.Run("With attributes share the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "feedback_service")).Info("entry saved")

		records := handler.GetRecords()
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Attrs["component"] != "feedback_service" {
			t.Errorf("expected component attribute, got %v", records[0].Attrs)
		}
	})

	t.Run("groups prefix attribute keys", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.WithGroup("http").Info("request handled", slog.Int("status", 200))

		records := handler.GetRecords()
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Attrs["http.status"] != int64(200) {
			t.Errorf("expected http.status=200, got %v", records[0].Attrs)
		}
	})
}

func TestAssertLogContains(t *testing.T) {
	logger, handler := NewTestLogger(t)
	logger.Warn("cache expired")

	AssertLogContains(t, handler, slog.LevelWarn, "cache expired")
}
