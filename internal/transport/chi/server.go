// Package chi exposes the engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resolvex/internal/domain"
	cataloguc "github.com/kailas-cloud/resolvex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/resolvex/internal/usecase/health"
	passageuc "github.com/kailas-cloud/resolvex/internal/usecase/passage"
	resolveuc "github.com/kailas-cloud/resolvex/internal/usecase/resolve"
)

// errorCode is a machine-readable discriminator in error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeItemNotFound     errorCode = "item_not_found"
	codeModelTaken       errorCode = "model_taken"
	codeAliasExists      errorCode = "alias_exists"
	codeInternalError    errorCode = "internal_error"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// VocabBuilder builds a tenant vocabulary, normally through the cache.
type VocabBuilder interface {
	Build(ctx context.Context, tenant string) ([]string, error)
}

// Server routes HTTP requests to the usecase services.
type Server struct {
	resolver      *resolveuc.Service
	passages      *passageuc.Service
	catalog       *cataloguc.Service
	vocab         VocabBuilder
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	resolver *resolveuc.Service,
	passages *passageuc.Service,
	catalog *cataloguc.Service,
	vocab VocabBuilder,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		resolver: resolver,
		passages: passages,
		catalog:  catalog,
		vocab:    vocab,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeItemNotFound),
		sentinelHandler(domain.ErrModelTaken, http.StatusConflict, codeModelTaken),
		sentinelHandler(domain.ErrAliasExists, http.StatusConflict, codeAliasExists),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Routes mounts all API routes onto the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1/{tenant}", func(r chi.Router) {
		r.Post("/resolve", s.resolve)
		r.Post("/filter", s.filter)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.listItems)
			r.Post("/", s.upsertItem)
			r.Get("/{itemID}", s.getItem)
			r.Delete("/{itemID}", s.deleteItem)
			r.Post("/{itemID}/aliases", s.addAlias)
		})
		r.Get("/aliases", s.listAliases)
		r.Get("/vocabulary", s.vocabulary)
	})
	r.Get("/health", s.getHealth)
}

// --- Wire types ---

type resolveRequest struct {
	Query string `json:"query"`
}

type candidateDTO struct {
	Item       itemDTO `json:"item"`
	AliasScore float64 `json:"alias_score"`
	FTSScore   float64 `json:"fts_score"`
	TotalScore float64 `json:"total_score"`
}

type resolveResponse struct {
	Decision    domain.Decision `json:"decision"`
	Winner      *candidateDTO   `json:"winner,omitempty"`
	RunnerUpGap float64         `json:"runner_up_gap,omitempty"`
	Candidates  []candidateDTO  `json:"candidates,omitempty"`
}

type passageDTO struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

type filterRequest struct {
	ItemID   string       `json:"item_id"`
	Passages []passageDTO `json:"passages"`
}

type filterResponse struct {
	Kept         []passageDTO        `json:"kept"`
	Method       domain.FilterMethod `json:"method"`
	UsedFallback bool                `json:"used_fallback"`
	Refused      bool                `json:"refused"`
}

type itemRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

type itemDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Brand     string `json:"brand,omitempty"`
	Model     string `json:"model,omitempty"`
	NormTitle string `json:"norm_title"`
	NormBrand string `json:"norm_brand,omitempty"`
	NormModel string `json:"norm_model,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type aliasRequest struct {
	Alias string `json:"alias"`
}

type aliasDTO struct {
	ItemID string           `json:"item_id"`
	Kind   domain.AliasKind `json:"kind"`
	Raw    string           `json:"raw"`
	Norm   string           `json:"norm"`
}

type vocabularyResponse struct {
	Terms []string `json:"terms"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- Handlers ---

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	out := s.resolver.Resolve(r.Context(), tenant, req.Query)
	writeJSON(w, http.StatusOK, outcomeToDTO(out))
}

func (s *Server) filter(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "item_id is required")
		return
	}

	item, err := s.catalog.GetItem(r.Context(), tenant, req.ItemID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	passages := make([]domain.Passage, len(req.Passages))
	for i, p := range req.Passages {
		passages[i] = domain.Passage{Content: p.Content, Source: p.Source}
	}

	res := s.passages.Filter(passages, item)

	kept := make([]passageDTO, len(res.Kept))
	for i, p := range res.Kept {
		kept[i] = passageDTO{Content: p.Content, Source: p.Source}
	}
	writeJSON(w, http.StatusOK, filterResponse{
		Kept:         kept,
		Method:       res.Method,
		UsedFallback: res.UsedFallback,
		Refused:      res.Refused(),
	})
}

func (s *Server) upsertItem(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "title is required")
		return
	}

	item, err := s.catalog.UpsertItem(r.Context(), tenant, cataloguc.ItemInput{
		ID:          req.ID,
		Title:       req.Title,
		Brand:       req.Brand,
		Model:       req.Model,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, itemToDTO(item))
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	itemID := chi.URLParam(r, "itemID")

	item, err := s.catalog.GetItem(r.Context(), tenant, itemID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDTO(item))
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	items, err := s.catalog.ListItems(r.Context(), tenant)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	dtos := make([]itemDTO, len(items))
	for i, it := range items {
		dtos[i] = itemToDTO(it)
	}
	writeJSON(w, http.StatusOK, map[string][]itemDTO{"items": dtos})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	itemID := chi.URLParam(r, "itemID")

	if err := s.catalog.DeleteItem(r.Context(), tenant, itemID); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addAlias(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	itemID := chi.URLParam(r, "itemID")

	var req aliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Alias == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "alias is required")
		return
	}

	a, err := s.catalog.AddAlias(r.Context(), tenant, itemID, req.Alias)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, aliasToDTO(a))
}

func (s *Server) listAliases(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	aliases, err := s.catalog.ListAliases(r.Context(), tenant)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	dtos := make([]aliasDTO, len(aliases))
	for i, a := range aliases {
		dtos[i] = aliasToDTO(a)
	}
	writeJSON(w, http.StatusOK, map[string][]aliasDTO{"aliases": dtos})
}

func (s *Server) vocabulary(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	terms, err := s.vocab.Build(r.Context(), tenant)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if terms == nil {
		terms = []string{}
	}
	writeJSON(w, http.StatusOK, vocabularyResponse{Terms: terms})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// --- Converters ---

func itemToDTO(it domain.CatalogItem) itemDTO {
	return itemDTO{
		ID:        it.ID(),
		Title:     it.Title(),
		Brand:     it.Brand(),
		Model:     it.Model(),
		NormTitle: it.NormTitle(),
		NormBrand: it.NormBrand(),
		NormModel: it.NormModel(),
		URL:       it.URL(),
		CreatedAt: it.CreatedAt(),
		UpdatedAt: it.UpdatedAt(),
	}
}

func aliasToDTO(a domain.Alias) aliasDTO {
	return aliasDTO{
		ItemID: a.ItemID(),
		Kind:   a.Kind(),
		Raw:    a.Raw(),
		Norm:   a.Norm(),
	}
}

func candidateToDTO(c domain.Candidate) candidateDTO {
	return candidateDTO{
		Item:       itemToDTO(c.Item),
		AliasScore: c.AliasScore,
		FTSScore:   c.FTSScore,
		TotalScore: c.TotalScore,
	}
}

func outcomeToDTO(out domain.Outcome) resolveResponse {
	resp := resolveResponse{Decision: out.Decision}
	if out.Winner != nil {
		dto := candidateToDTO(*out.Winner)
		resp.Winner = &dto
		resp.RunnerUpGap = out.RunnerUpGap
	}
	if out.Decision == domain.DecisionMultiple {
		resp.Candidates = make([]candidateDTO, len(out.Candidates))
		for i, c := range out.Candidates {
			resp.Candidates[i] = candidateToDTO(c)
		}
	}
	return resp
}

// --- Error plumbing ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage exposes only sentinel text to clients; anything else is
// an opaque internal error.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrModelTaken,
		domain.ErrAliasExists,
		domain.ErrInvalidInput,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
