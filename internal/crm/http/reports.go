package http

import (
	"net/http"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/pkg/crmsdk"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
)

type ReportsHandler struct {
	ReportService *service.ReportService
}

// ServeHTTP generates a report over the caller's visible records.
//
//	@Summary		Generate report
//	@Description	Aggregates records created in [from, to). An empty body reports on everything.
//	@Tags			Reports
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		crmsdk.ReportRequest	false	"Filter"
//	@Success		200		{object}	crmsdk.ReportEnvelope
//	@Failure		400		{object}	crmsdk.ErrorResponse
//	@Failure		401		{object}	crmsdk.ErrorResponse
//	@Router			/api/reports/generate [post].
func (h *ReportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	var req crmsdk.ReportRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	filter := domain.ReportFilter{From: req.From, To: req.To}
	for _, k := range req.Kinds {
		filter.Kinds = append(filter.Kinds, domain.RecordKind(k))
	}

	rep, err := h.ReportService.Generate(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, rep)
}
