package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpMailer_Send(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := NewNoOpMailer(slog.New(slog.NewTextHandler(&buf, nil)))
	err := n.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "digest discarded")
}

func TestNoOpMailer_NilLogger(t *testing.T) {
	t.Parallel()

	n := NewNoOpMailer(nil)
	require.NoError(t, n.Send(context.Background(), Message{Subject: "x"}))
}

// compile-time interface checks.
var (
	_ Mailer = (*NoOpMailer)(nil)
	_ Mailer = (*SendGridMailer)(nil)
)
