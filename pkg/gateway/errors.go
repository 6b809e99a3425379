package gateway

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/gaslink/pkg/catalog"
	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/httputil"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/platinummonkey/gaslink/pkg/pricing"
)

// writeError maps an error to an envelope response. Platform rejections keep
// their 4xx status and message; platform outages become 502.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *pricing.ValidationError
		upstream   *client.Error
	)

	switch {
	case errors.As(err, &validation):
		httputil.WriteValidationError(w, validation.Field, validation.Message)
	case errors.Is(err, pricing.ErrInvalidSize):
		httputil.WriteValidationError(w, "size", "size must be a number of kilograms")
	case errors.Is(err, catalog.ErrInvalidPlanID):
		httputil.WriteBadRequest(w, err.Error())
	case errors.As(err, &upstream):
		status := http.StatusBadGateway
		if upstream.Kind == client.KindAPI && upstream.Status >= 400 && upstream.Status < 500 {
			status = upstream.Status
		}
		observability.FromContext(r.Context()).WithError(err).WithField("upstream_status", upstream.Status).Warn("Platform call failed")
		httputil.WriteFailure(w, status, upstream.UserMessage())
	default:
		observability.FromContext(r.Context()).WithError(err).Error("Request failed")
		httputil.WriteInternalError(w)
	}
}
