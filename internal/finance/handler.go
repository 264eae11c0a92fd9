package finance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tabdeel/pulse/internal/platform/httpx"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/shared"
	"github.com/tabdeel/pulse/internal/users"
)

// Handler serves the finance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	keys    shared.IdempotencyStore
	rbac    rbac.Middleware
}

// NewHandler builds a Handler. keys guards the create endpoints against
// replayed Idempotency-Key headers; nil disables the guard.
func NewHandler(logger *slog.Logger, service *Service, keys shared.IdempotencyStore, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, keys: keys, rbac: rbac}
}

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/finance", func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)

		r.Get("/instructions", h.listInstructions)
		r.With(h.once("finance.instructions")).Post("/instructions", h.submitInstruction)
		r.Get("/instructions/{id}", h.getInstruction)
		r.Get("/collections", h.listCollections)
		r.Get("/collections/export", h.exportCollections)
		r.With(h.once("finance.collections")).Post("/collections", h.logCollection)
		r.Get("/collections/{id}", h.getCollection)
		r.Get("/collections/{id}/document", h.collectionDocument)
		r.Post("/collections/{id}/deposit", h.markDeposited)
		r.Get("/deposits", h.listDeposits)
		r.Get("/deposits/export", h.exportDeposits)
		r.With(h.once("finance.deposits")).Post("/deposits", h.logDeposit)
		r.Get("/deposits/{id}", h.getDeposit)
		r.Get("/deposits/{id}/document", h.depositDocument)

		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(rbac.PermFinanceApprove))
			r.Post("/instructions/{id}/approve", h.approve)
			r.Post("/instructions/{id}/reject", h.reject)
			r.Post("/deposits/{id}/confirm", h.confirmDeposit)
		})
	})
}

func (h *Handler) once(module string) func(http.Handler) http.Handler {
	return shared.Idempotent(h.keys, module, h.logger)
}

type listQuery struct {
	Sort  string `validate:"omitempty,oneof=dueDate date amount"`
	Order string `validate:"omitempty,oneof=asc desc"`
	From  string `validate:"omitempty,datetime=2006-01-02"`
	To    string `validate:"omitempty,datetime=2006-01-02"`
}

type instructionRequest struct {
	Payee       string   `json:"payee" validate:"required"`
	Amount      float64  `json:"amount" validate:"gt=0"`
	DueDate     string   `json:"dueDate" validate:"required,datetime=2006-01-02"`
	IsRecurring bool     `json:"isRecurring"`
	NextDueDate string   `json:"nextDueDate" validate:"omitempty,datetime=2006-01-02"`
	Balance     *float64 `json:"balance"`
}

type decisionRequest struct {
	Remarks string `json:"remarks"`
}

type collectionRequest struct {
	Project           string   `json:"project" validate:"required"`
	Payer             string   `json:"payer" validate:"required"`
	Amount            float64  `json:"amount" validate:"gt=0"`
	Type              string   `json:"type" validate:"required,oneof=Cash Cheque"`
	Date              string   `json:"date" validate:"required,datetime=2006-01-02"`
	OutstandingAmount *float64         `json:"outstandingAmount" validate:"omitempty,gte=0"`
	Document          *documentRequest `json:"document"`
}

type depositRequest struct {
	AccountHead string           `json:"accountHead" validate:"required"`
	Amount      float64          `json:"amount" validate:"gt=0"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Document    *documentRequest `json:"document"`
}

// documentRequest carries the supporting document metadata. Content is the
// base64-encoded file and may be omitted when only metadata is recorded.
type documentRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	Size        int64  `json:"size" validate:"gte=0"`
	Content     []byte `json:"content"`
}

func (d *documentRequest) document() *Document {
	if d == nil {
		return nil
	}
	doc := &Document{FileName: d.FileName, ContentType: d.ContentType, Size: d.Size, Content: d.Content}
	if len(d.Content) > 0 {
		doc.Size = int64(len(d.Content))
	}
	return doc
}

// maxCreateBody admits a base64 document of MaxDocumentSize plus the record.
const maxCreateBody = MaxDocumentSize/3*4 + 64<<10

// instructionView adds the caller's approval ability to an instruction.
type instructionView struct {
	Instruction
	CanApprove bool `json:"canApprove"`
}

func (h *Handler) listInstructions(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	items := h.service.Ledger().Instructions(opts)
	views := make([]instructionView, 0, len(items))
	for _, in := range items {
		views = append(views, newInstructionView(actor, in))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"instructions": views})
}

func (h *Handler) getInstruction(w http.ResponseWriter, r *http.Request) {
	in, ok := h.service.Ledger().Instruction(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, newInstructionView(actor, in))
}

func (h *Handler) submitInstruction(w http.ResponseWriter, r *http.Request) {
	var req instructionRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	if req.IsRecurring {
		fields := httpx.FieldErrors{}
		if req.NextDueDate == "" {
			fields["nextDueDate"] = "is required for recurring payments"
		}
		if req.Balance == nil || *req.Balance < 0 {
			fields["balance"] = "must be a non-negative amount for recurring payments"
		}
		if len(fields) > 0 {
			httpx.RespondValidation(w, fields)
			return
		}
	}
	actor, _ := users.ProfileFromContext(r.Context())
	in := NewInstruction{
		Payee:       req.Payee,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		IsRecurring: req.IsRecurring,
	}
	if req.IsRecurring {
		in.NextDueDate = req.NextDueDate
		in.Balance = req.Balance
	}
	rec, err := h.service.SubmitInstruction(r.Context(), actor, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newInstructionView(actor, rec))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

type decideFunc func(ctx context.Context, actor users.Profile, id, remarks string) (Instruction, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn decideFunc) {
	var req decisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	rec, err := fn(r.Context(), actor, chi.URLParam(r, "id"), req.Remarks)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newInstructionView(actor, rec))
}

func (h *Handler) listCollections(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"collections": h.service.Ledger().Collections(opts)})
}

func (h *Handler) exportCollections(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	data, err := CollectionsCSV(h.service.Ledger().Collections(opts))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeCSV(w, "collections.csv", data)
}

func (h *Handler) logCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	rec, err := h.service.LogCollection(r.Context(), actor, NewCollection{
		Project:           req.Project,
		Payer:             req.Payer,
		Amount:            req.Amount,
		Type:              CollectionType(req.Type),
		Date:              req.Date,
		OutstandingAmount: req.OutstandingAmount,
		Document:          req.Document.document(),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) getCollection(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.service.Ledger().Collection(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) collectionDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.service.Ledger().Collection(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	writeDocument(w, rec.Document)
}

func (h *Handler) markDeposited(w http.ResponseWriter, r *http.Request) {
	actor, _ := users.ProfileFromContext(r.Context())
	rec, err := h.service.MarkDeposited(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) listDeposits(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deposits": h.service.Ledger().Deposits(opts)})
}

func (h *Handler) exportDeposits(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	data, err := DepositsCSV(h.service.Ledger().Deposits(opts))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeCSV(w, "deposits.csv", data)
}

func (h *Handler) logDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	if !httpx.Bind(w, r, &req) {
		return
	}
	actor, _ := users.ProfileFromContext(r.Context())
	rec, err := h.service.LogDeposit(r.Context(), actor, NewDeposit{
		AccountHead: req.AccountHead,
		Amount:      req.Amount,
		Date:        req.Date,
		Document:    req.Document.document(),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) getDeposit(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.service.Ledger().Deposit(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) depositDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.service.Ledger().Deposit(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, ErrNotFound)
		return
	}
	writeDocument(w, rec.Document)
}

func (h *Handler) confirmDeposit(w http.ResponseWriter, r *http.Request) {
	actor, _ := users.ProfileFromContext(r.Context())
	rec, err := h.service.ConfirmDeposit(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrApprovalNotPermitted), errors.Is(err, ErrOverLimit):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrAlreadyDeposited), errors.Is(err, ErrAlreadyConfirmed):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrUnknownAccountHead):
		httpx.RespondValidation(w, httpx.FieldErrors{"accountHead": "must be an active account head"})
	case errors.Is(err, ErrUnknownProject):
		httpx.RespondValidation(w, httpx.FieldErrors{"project": "must be an existing project"})
	case errors.Is(err, ErrInvalidDocument):
		httpx.RespondValidation(w, httpx.FieldErrors{"document": strings.TrimPrefix(err.Error(), ErrInvalidDocument.Error()+": ")})
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("finance request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func newInstructionView(actor users.Profile, in Instruction) instructionView {
	return instructionView{
		Instruction: in,
		CanApprove:  in.Status == InstructionPending && CanApprove(actor, in.Amount),
	}
}

func listOptions(w http.ResponseWriter, r *http.Request) (ListOptions, bool) {
	q := r.URL.Query()
	query := listQuery{Sort: q.Get("sort"), Order: q.Get("order"), From: q.Get("from"), To: q.Get("to")}
	if err := httpx.Validate(&query); err != nil {
		httpx.RespondValidation(w, err)
		return ListOptions{}, false
	}
	return ListOptions{Sort: query.Sort, Order: SortOrder(query.Order), From: query.From, To: query.To}, true
}

// writeDocument serves uploaded bytes. A record without a document, or with
// metadata only, answers 404.
func writeDocument(w http.ResponseWriter, doc *Document) {
	if !doc.HasContent() {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no supporting document content")
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(doc.Content)
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(data)
}
