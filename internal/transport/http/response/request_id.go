package response

import (
	"net/http"

	appctx "github.com/acme/identity-service/internal/pkg/context"
)

// RequestIDFromContext extracts the request id set by the RequestID
// middleware, if any.
func RequestIDFromContext(r *http.Request) string {
	return appctx.GetRequestID(r.Context())
}
