package middleware

import (
	"fmt"
	"net/http"

	"github.com/timberyard/meetingassist/internal/api"
)

// MaxBodyBytes rejects requests whose declared length exceeds limit and caps
// streamed bodies at limit. Attachments and ingested files travel base64
// encoded in the JSON body, so limit bounds the largest accepted upload.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	tooLarge := fmt.Sprintf("request body exceeds %d bytes", limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, tooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
