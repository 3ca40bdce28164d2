package whisper_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/whisper/pkg/whispersdk"
	"github.com/stretchr/testify/require"
)

// TestLoginRateLimit runs with the production limits: five attempts per
// minute per address and username.
func TestLoginRateLimit(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()

	var limited error
	for range 10 {
		_, err := client.Login(ctx, "mallory", "guess")
		require.Error(t, err)
		if whispersdk.StatusOf(err) == http.StatusTooManyRequests {
			limited = err
			break
		}
		requireCode(t, err, http.StatusUnauthorized, whispersdk.ErrorCodeAuthFailed)
	}
	requireCode(t, limited, http.StatusTooManyRequests, whispersdk.ErrorCodeRateLimited)
}
