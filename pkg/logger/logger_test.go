package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/tenantkit/pkg/identity"
	"github.com/tenantkit/tenantkit/pkg/logger"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with static attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("component", "authn")),
		)
		log.Info("started")

		record := logLine(t, &buf)
		assert.Equal(t, "started", record["msg"])
		assert.Equal(t, "authn", record["component"])
	})

	t.Run("level filtering", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Zero(t, buf.Len())

		log.Warn("kept")
		assert.NotZero(t, buf.Len())
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	userID := uuid.New()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(
			identity.TenantLoggerExtractor(),
			identity.UserLoggerExtractor(),
		),
	)

	ctx := identity.WithToken(context.Background(), &identity.PasswordToken{
		User:   identity.AuthenticatedUser{ID: userID, Email: "jane@example.com"},
		Tenant: identity.AuthenticatedTenant{ID: tenantID},
	})
	log.InfoContext(ctx, "request handled")

	record := logLine(t, &buf)
	assert.Equal(t, tenantID.String(), record["tenant_id"])
	assert.Equal(t, userID.String(), record["user_id"])

	// Anonymous contexts add nothing.
	buf.Reset()
	log.InfoContext(context.Background(), "anonymous request")
	record = logLine(t, &buf)
	assert.NotContains(t, record, "tenant_id")
	assert.NotContains(t, record, "user_id")
}
