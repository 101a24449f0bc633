package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
)

// RecordsHandler serves CRUD for one record kind.
type RecordsHandler struct {
	RecordService *service.RecordService
	Kind          domain.RecordKind
}

func parsePositive(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	if name == "page" && n > service.MaxPage {
		return 0, &service.ValidationError{Field: name, Message: "is out of range"}
	}
	return n, nil
}

// HandleList returns one page of records.
//
//	@Summary		List records
//	@Description	Lists records of a kind, newest first. Standard users only see their own records.
//	@Tags			Records
//	@Security		BearerAuth
//	@Produce		json
//	@Param			kind	path		string	true	"Record kind"	Enums(contacts, accounts, deals, activities, leads)
//	@Param			page	query		int		false	"Page number (default 1)"
//	@Param			limit	query		int		false	"Page size (default 10, max 100)"
//	@Param			q		query		string	false	"Case-insensitive search"
//	@Success		200		{object}	crmsdk.RecordListEnvelope
//	@Failure		400		{object}	crmsdk.ErrorResponse
//	@Failure		401		{object}	crmsdk.ErrorResponse
//	@Router			/api/{kind} [get].
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	page, err := parsePositive(r, "page")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	limit, err := parsePositive(r, "limit")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.RecordService.List(r.Context(), actor, h.Kind, service.ListParams{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("q"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WritePaginated(w, res.Records, httpx.NewPagination(res.Page, res.Limit, res.Total))
}

// HandleCreate creates a record owned by the caller.
//
//	@Summary	Create record
//	@Tags		Records
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		kind	path		string	true	"Record kind"	Enums(contacts, accounts, deals, activities, leads)
//	@Param		request	body		object	true	"Payload for the kind"
//	@Success	201		{object}	crmsdk.RecordEnvelope
//	@Failure	400		{object}	crmsdk.ErrorResponse
//	@Failure	401		{object}	crmsdk.ErrorResponse
//	@Router		/api/{kind} [post].
func (h *RecordsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	var body json.RawMessage
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	rec, err := h.RecordService.Create(r.Context(), actor, h.Kind, body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, rec)
}

// HandleGet returns one record.
//
//	@Summary	Get record
//	@Tags		Records
//	@Security	BearerAuth
//	@Produce	json
//	@Param		kind	path		string	true	"Record kind"	Enums(contacts, accounts, deals, activities, leads)
//	@Param		id		path		string	true	"Record ID"
//	@Success	200		{object}	crmsdk.RecordEnvelope
//	@Failure	401		{object}	crmsdk.ErrorResponse
//	@Failure	404		{object}	crmsdk.ErrorResponse
//	@Router		/api/{kind}/{id} [get].
func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	rec, err := h.RecordService.Get(r.Context(), actor, h.Kind, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, rec)
}

// HandleUpdate replaces the payload of a record.
//
//	@Summary	Replace record
//	@Tags		Records
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		kind	path		string	true	"Record kind"	Enums(contacts, accounts, deals, activities, leads)
//	@Param		id		path		string	true	"Record ID"
//	@Param		request	body		object	true	"Payload for the kind"
//	@Success	200		{object}	crmsdk.RecordEnvelope
//	@Failure	400		{object}	crmsdk.ErrorResponse
//	@Failure	401		{object}	crmsdk.ErrorResponse
//	@Failure	404		{object}	crmsdk.ErrorResponse
//	@Router		/api/{kind}/{id} [put].
func (h *RecordsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	var body json.RawMessage
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	rec, err := h.RecordService.Update(r.Context(), actor, h.Kind, r.PathValue("id"), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, rec)
}

// HandleDelete removes a record.
//
//	@Summary	Delete record
//	@Tags		Records
//	@Security	BearerAuth
//	@Produce	json
//	@Param		kind	path		string	true	"Record kind"	Enums(contacts, accounts, deals, activities, leads)
//	@Param		id		path		string	true	"Record ID"
//	@Success	200		{object}	crmsdk.SuccessResponse
//	@Failure	401		{object}	crmsdk.ErrorResponse
//	@Failure	404		{object}	crmsdk.ErrorResponse
//	@Router		/api/{kind}/{id} [delete].
func (h *RecordsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := h.RecordService.Delete(r.Context(), actor, h.Kind, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{Success: true})
}
