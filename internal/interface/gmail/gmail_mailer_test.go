package gmail

import (
	"strings"
	"testing"

	"safarsathi-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	raw, err := buildMessage("SafarSathi <no-reply@safarsathi.in>", &entity.Mail{
		To:      "asha@example.com",
		Subject: "Verify your email",
		Text:    "Your code is 123456",
		HTML:    "<p>Your code is <b>123456</b></p>",
	})
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "To: asha@example.com\r\n")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "text/plain; charset=UTF-8")
	assert.Contains(t, msg, "<b>123456</b>")
	assert.True(t, strings.Index(msg, "text/plain") < strings.Index(msg, "text/html"))
}

func TestBuildMessage_SkipsEmptyParts(t *testing.T) {
	raw, err := buildMessage("no-reply@safarsathi.in", &entity.Mail{
		To:      "asha@example.com",
		Subject: "Hello",
		Text:    "plain only",
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "text/html")
}
