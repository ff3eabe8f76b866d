package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/contractchecker-server/internal/model"
	"github.com/dtroode/contractchecker-server/internal/testutil"
)

func TestRenderOTP(t *testing.T) {
	body, err := RenderOTP("482913", 2026)
	require.NoError(t, err)
	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "2026")
}

func TestRenderWelcome(t *testing.T) {
	body, err := RenderWelcome()
	require.NoError(t, err)
	assert.Contains(t, body, "Welcome to Contract Checker")
}

func TestLogMailer_DoesNotLogBody(t *testing.T) {
	log, buf := testutil.MakeBufferLogger()
	m := NewLogMailer(log)

	err := m.Send(context.Background(), model.Email{
		To:      []string{"a@b.co"},
		Subject: OTPSubject,
		HTML:    "code 123456",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), OTPSubject)
	assert.NotContains(t, buf.String(), "123456")
}
