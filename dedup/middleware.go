package dedup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"tourdesk/utils"
)

const DefaultTTL = 30 * time.Second

// Fingerprint is the Idempotency-Key header when present, otherwise a hash of
// method, path and body. The body is restored for the next handler.
func Fingerprint(r *http.Request) (string, error) {
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		return "key:" + key, nil
	}
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(io.LimitReader(r.Body, utils.MaxBodyBytes))
		if err != nil {
			return "", err
		}
		body = b
		r.Body = io.NopCloser(bytes.NewReader(body))
	}
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":"))
	h.Write(body)
	return "hash:" + hex.EncodeToString(h.Sum(nil)), nil
}

// Middleware answers 409 to a request whose fingerprint is already in
// flight. If the guard itself errors the request goes through.
func Middleware(g Guard, ttl time.Duration, log *zap.Logger) func(httprouter.Handle) httprouter.Handle {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			key, err := Fingerprint(r)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "failed to read request body")
				return
			}
			release, ok, err := g.Acquire(r.Context(), key, ttl)
			if err != nil {
				log.Warn("dedup guard unavailable", zap.Error(err))
				next(w, r, ps)
				return
			}
			if !ok {
				utils.RespondWithError(w, http.StatusConflict, "duplicate request in progress")
				return
			}
			defer release()
			next(w, r, ps)
		}
	}
}
