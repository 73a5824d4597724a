package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartJobAddsLogFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	baseLogger = zap.New(core)
	sugar = baseLogger.Sugar()
	runID.Store("")
	jobID = 0

	SetRunID("run-123")
	StartJob()
	Infof("hello")

	logs := recorded.All()
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}

	fields := logs[0].ContextMap()
	if fields["run_id"] != "run-123" {
		t.Fatalf("expected run_id to be run-123, got %v", fields["run_id"])
	}
	if fields["job_id"] != uint64(1) {
		t.Fatalf("expected job_id to be 1, got %v (%T)", fields["job_id"], fields["job_id"])
	}
	if fields["log_id"] != "run-123-1" {
		t.Fatalf("expected log_id to be run-123-1, got %v", fields["log_id"])
	}
}

func TestSetRunIDIgnoresBlank(t *testing.T) {
	runID.Store("keep")
	SetRunID("   ")
	if got, _ := runID.Load().(string); got != "keep" {
		t.Fatalf("expected blank run id to be ignored, got %q", got)
	}
}

func TestInitRejectsInvalidSettings(t *testing.T) {
	if err := Init(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected invalid format error")
	}
	if err := Init(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestInitWritesToFile(t *testing.T) {
	path := t.TempDir() + "/tonegen.log"
	if err := Init(Config{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() {
		baseLogger = zap.NewNop()
		sugar = baseLogger.Sugar()
	})
	if !baseLogger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
}
