package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/templui/coachflow/internal/ctxkeys"
	"github.com/templui/coachflow/internal/model"
)

// maxWebhookBody bounds how much of a signed request is read for verification.
const maxWebhookBody = 64 << 10

// SchedulerSubject attributes work started by the external periodic trigger.
const SchedulerSubject = "cron"

// SignedScheduler accepts requests signed with the Standard Webhooks scheme
// (webhook-id, webhook-timestamp and webhook-signature headers) as coming
// from the scheduler. Unsigned requests fall through unchanged so bearer
// tokens keep working. With no secret configured signatures are ignored.
func SignedScheduler(secret string) func(http.HandlerFunc) http.HandlerFunc {
	var wh *standardwebhooks.Webhook
	if secret != "" {
		var err error
		wh, err = standardwebhooks.NewWebhookRaw([]byte(secret))
		if err != nil {
			slog.Error("invalid cron webhook secret, signed requests will be rejected", "error", err)
		}
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("webhook-signature") == "" || secret == "" {
				next(w, r)
				return
			}

			if wh == nil {
				writeError(w, http.StatusUnauthorized, "invalid signature")
				return
			}

			payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
			if err != nil {
				slog.Error("failed to read webhook payload", "error", err)
				writeError(w, http.StatusBadRequest, "failed to read request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			err = wh.Verify(payload, r.Header)
			if err != nil {
				slog.Warn("invalid scheduler signature", "error", err, "webhook_id", r.Header.Get("webhook-id"))
				writeError(w, http.StatusUnauthorized, "invalid signature")
				return
			}

			identity := &model.Identity{Subject: SchedulerSubject, Role: model.RoleScheduler}
			next(w, r.WithContext(ctxkeys.WithIdentity(r.Context(), identity)))
		}
	}
}
