package templates

import (
	"testing"
	"time"

	"safarsathi-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	t.Run("verification", func(t *testing.T) {
		mail, err := r.VerificationMail("asha@example.com", "482913", 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, Verification, mail.Template)
		assert.Contains(t, mail.HTML, "482913")
		assert.Contains(t, mail.HTML, "15 minutes")
		assert.Contains(t, mail.HTML, "2025 SafarSathi")
		assert.Equal(t, "Your OTP is: 482913", mail.Text)
	})

	t.Run("welcome_escapes_name", func(t *testing.T) {
		mail, err := r.WelcomeMail("asha@example.com", "<script>", "")
		require.NoError(t, err)
		assert.NotContains(t, mail.HTML, "<script>")
		assert.NotContains(t, mail.HTML, "Get started")
	})

	t.Run("location_status", func(t *testing.T) {
		mail, err := r.LocationStatusMail("asha@example.com", "Asha", entity.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, "Location Request Status Updated to rejected", mail.Subject)
		assert.Contains(t, mail.HTML, "#E53935")
	})
}
