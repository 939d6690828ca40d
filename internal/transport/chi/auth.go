package chi

import (
	"crypto/subtle"
	"net/http"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// PassphraseHeader carries the shared secret.
const PassphraseHeader = "X-App-Passphrase"

// PassphraseMiddleware rejects requests whose X-App-Passphrase header does not match.
// If passphrase is empty, the gate is disabled (pass-through).
func PassphraseMiddleware(passphrase string) func(http.Handler) http.Handler {
	want := []byte(passphrase)

	return func(next http.Handler) http.Handler {
		if len(want) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(PassphraseHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				writeError(w, http.StatusUnauthorized, clientMessage(domain.ErrUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
