package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/examind/exam-service/internal/utils"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestValidator(t *testing.T) *utils.Validator {
	t.Helper()
	return utils.NewValidator()
}
