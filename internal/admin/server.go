// Package admin exposes the settlement API over HTTP: vault initialization
// and funding, batch creation, execution, cancellation, and read endpoints
// for observers.
package admin

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kodax/bulkpay/internal/auth"
	"github.com/kodax/bulkpay/internal/cache"
	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/kodax/bulkpay/internal/ledger"
	"github.com/kodax/bulkpay/internal/settlement"
	"github.com/kodax/bulkpay/internal/store"
)

const (
	maxRequestBodyBytes = 1 << 20 // 1 MB

	defaultListLimit = 50
	maxListLimit     = 200

	// Terminal batches are immutable; cache entries can only fall out by
	// TTL or LRU pressure, never go stale.
	batchCacheSize = 1024
	batchCacheTTL  = 5 * time.Minute
)

// SettlementService is the lifecycle surface the HTTP layer drives. In
// production this is *settlement.Service; tests provide a mock.
type SettlementService interface {
	InitializeVault(ctx context.Context, authority model.Address) (*model.Vault, error)
	CreateBatch(ctx context.Context, p settlement.CreateBatchParams) (*model.Batch, error)
	ExecuteBatch(ctx context.Context, caller model.Address, batch, vault model.Address, accounts []ledger.AccountRef) error
	CancelBatch(ctx context.Context, caller model.Address, batch model.Address) error
	FundVault(ctx context.Context, vault model.Address, amount uint64) error
	FundTokenAccount(ctx context.Context, account model.Address, mint model.Address, amount uint64) error
}

// Server provides the HTTP API for the settlement service.
type Server struct {
	svc        SettlementService
	vaults     store.VaultRepository
	batches    store.BatchRepository
	verifier   auth.Verifier
	batchCache *cache.LRU[model.Address, *model.Batch]
	logger     *slog.Logger
}

// ServerOption configures optional dependencies for the server.
type ServerOption func(*Server)

// WithVerifier replaces the signature verifier (default: accept all, for
// environments where the transport is already authenticated).
func WithVerifier(v auth.Verifier) ServerOption {
	return func(s *Server) { s.verifier = v }
}

func NewServer(
	svc SettlementService,
	vaults store.VaultRepository,
	batches store.BatchRepository,
	logger *slog.Logger,
	opts ...ServerOption,
) *Server {
	s := &Server{
		svc:        svc,
		vaults:     vaults,
		batches:    batches,
		verifier:   auth.NoopVerifier{},
		batchCache: cache.NewLRU[model.Address, *model.Batch](batchCacheSize, batchCacheTTL),
		logger:     logger.With("component", "api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the settlement API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/vaults", s.handleInitializeVault)
	mux.HandleFunc("GET /v1/vaults/{address}", s.handleGetVault)
	mux.HandleFunc("GET /v1/vaults/{address}/batches", s.handleListBatches)
	mux.HandleFunc("POST /v1/vaults/{address}/fund", s.handleFundVault)
	mux.HandleFunc("POST /v1/token-accounts/{address}/fund", s.handleFundTokenAccount)
	mux.HandleFunc("POST /v1/batches", s.handleCreateBatch)
	mux.HandleFunc("GET /v1/batches/{address}", s.handleGetBatch)
	mux.HandleFunc("POST /v1/batches/{address}/execute", s.handleExecuteBatch)
	mux.HandleFunc("POST /v1/batches/{address}/cancel", s.handleCancelBatch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

type initializeVaultRequest struct {
	Authority string `json:"authority"`
	Signature string `json:"signature,omitempty"`
}

type vaultResponse struct {
	Address    string `json:"address"`
	Authority  string `json:"authority"`
	TotalPaid  uint64 `json:"total_paid"`
	BatchCount uint64 `json:"batch_count"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

func vaultToResponse(v *model.Vault) vaultResponse {
	return vaultResponse{
		Address:    string(v.Address),
		Authority:  string(v.Authority),
		TotalPaid:  v.TotalPaid,
		BatchCount: v.BatchCount,
		IsActive:   v.IsActive,
		CreatedAt:  v.CreatedAt.UTC().Format(timeFormat),
	}
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func (s *Server) handleInitializeVault(w http.ResponseWriter, r *http.Request) {
	var req initializeVaultRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	authority := model.Address(req.Authority)
	if authority == "" {
		writeError(w, http.StatusBadRequest, "authority is required")
		return
	}
	if !s.verifySignature(w, authority, signingMessage("init", string(authority)), req.Signature) {
		return
	}

	vault, err := s.svc.InitializeVault(r.Context(), authority)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, vaultToResponse(vault))
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	vault, err := s.vaults.Get(r.Context(), model.Address(r.PathValue("address")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vaultToResponse(vault))
}

type fundRequest struct {
	Amount uint64 `json:"amount"`
	Mint   string `json:"mint,omitempty"`
}

func (s *Server) handleFundVault(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if err := s.svc.FundVault(r.Context(), model.Address(r.PathValue("address")), req.Amount); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "funded"})
}

func (s *Server) handleFundTokenAccount(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Amount == 0 || req.Mint == "" {
		writeError(w, http.StatusBadRequest, "amount and mint are required")
		return
	}
	if err := s.svc.FundTokenAccount(r.Context(), model.Address(r.PathValue("address")), model.Address(req.Mint), req.Amount); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "funded"})
}

type recipientRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Memo    string `json:"memo,omitempty"`
}

type createBatchRequest struct {
	Vault      string             `json:"vault"`
	Creator    string             `json:"creator"`
	BatchID    uint64             `json:"batch_id"`
	TokenMint  *string            `json:"token_mint,omitempty"`
	Recipients []recipientRequest `json:"recipients"`
	Signature  string             `json:"signature,omitempty"`
}

type batchResponse struct {
	Address        string             `json:"address"`
	Vault          string             `json:"vault"`
	Creator        string             `json:"creator"`
	BatchID        uint64             `json:"batch_id"`
	RecipientCount int                `json:"recipient_count"`
	TotalAmount    uint64             `json:"total_amount"`
	TokenMint      *string            `json:"token_mint,omitempty"`
	Status         string             `json:"status"`
	CreatedAt      string             `json:"created_at"`
	ExecutedAt     *string            `json:"executed_at,omitempty"`
	Recipients     []recipientRequest `json:"recipients,omitempty"`
}

func batchToResponse(b *model.Batch, includeRecipients bool) batchResponse {
	resp := batchResponse{
		Address:        string(b.Address),
		Vault:          string(b.Vault),
		Creator:        string(b.Creator),
		BatchID:        b.BatchID,
		RecipientCount: b.RecipientCount,
		TotalAmount:    b.TotalAmount,
		Status:         b.Status.String(),
		CreatedAt:      b.CreatedAt.UTC().Format(timeFormat),
	}
	if b.TokenMint != nil {
		m := string(*b.TokenMint)
		resp.TokenMint = &m
	}
	if b.ExecutedAt != nil {
		t := b.ExecutedAt.UTC().Format(timeFormat)
		resp.ExecutedAt = &t
	}
	if includeRecipients {
		for _, rec := range b.Recipients {
			resp.Recipients = append(resp.Recipients, recipientRequest{
				Address: string(rec.Address),
				Amount:  rec.Amount,
				Memo:    rec.Memo,
			})
		}
	}
	return resp
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Vault == "" || req.Creator == "" {
		writeError(w, http.StatusBadRequest, "vault and creator are required")
		return
	}
	creator := model.Address(req.Creator)
	msg := signingMessage("create", req.Vault, strconv.FormatUint(req.BatchID, 10))
	if !s.verifySignature(w, creator, msg, req.Signature) {
		return
	}

	params := settlement.CreateBatchParams{
		Vault:   model.Address(req.Vault),
		Creator: creator,
		BatchID: req.BatchID,
	}
	if req.TokenMint != nil {
		m := model.Address(*req.TokenMint)
		params.TokenMint = &m
	}
	for _, rec := range req.Recipients {
		params.Recipients = append(params.Recipients, model.Recipient{
			Address: model.Address(rec.Address),
			Amount:  rec.Amount,
			Memo:    rec.Memo,
		})
	}

	batch, err := s.svc.CreateBatch(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchToResponse(batch, true))
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	address := model.Address(r.PathValue("address"))

	if batch, ok := s.batchCache.Get(address); ok {
		writeJSON(w, http.StatusOK, batchToResponse(batch, true))
		return
	}

	batch, err := s.batches.Get(r.Context(), address)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if batch.Status.Terminal() {
		s.batchCache.Put(address, batch)
	}
	writeJSON(w, http.StatusOK, batchToResponse(batch, true))
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxListLimit {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	batches, err := s.batches.ListByVault(r.Context(), model.Address(r.PathValue("address")), limit, offset)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := make([]batchResponse, 0, len(batches))
	for i := range batches {
		resp = append(resp, batchToResponse(&batches[i], false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": resp})
}

type executeBatchRequest struct {
	Vault     string   `json:"vault"`
	Authority string   `json:"authority"`
	Accounts  []string `json:"accounts"`
	Signature string   `json:"signature,omitempty"`
}

func (s *Server) handleExecuteBatch(w http.ResponseWriter, r *http.Request) {
	batchAddr := model.Address(r.PathValue("address"))
	var req executeBatchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Vault == "" || req.Authority == "" {
		writeError(w, http.StatusBadRequest, "vault and authority are required")
		return
	}
	authority := model.Address(req.Authority)
	msg := signingMessage("execute", string(batchAddr), req.Vault)
	if !s.verifySignature(w, authority, msg, req.Signature) {
		return
	}

	accounts := make([]ledger.AccountRef, 0, len(req.Accounts))
	for _, a := range req.Accounts {
		accounts = append(accounts, ledger.AccountRef{Address: model.Address(a)})
	}

	if err := s.svc.ExecuteBatch(r.Context(), authority, batchAddr, model.Address(req.Vault), accounts); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "executed"})
}

type cancelBatchRequest struct {
	Authority string `json:"authority"`
	Signature string `json:"signature,omitempty"`
}

func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request) {
	batchAddr := model.Address(r.PathValue("address"))
	var req cancelBatchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Authority == "" {
		writeError(w, http.StatusBadRequest, "authority is required")
		return
	}
	authority := model.Address(req.Authority)
	if !s.verifySignature(w, authority, signingMessage("cancel", string(batchAddr)), req.Signature) {
		return
	}

	if err := s.svc.CancelBatch(r.Context(), authority, batchAddr); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// signingMessage builds the canonical byte string a principal signs for a
// mutating operation.
func signingMessage(op string, parts ...string) []byte {
	msg := "bulkpay:" + op
	for _, p := range parts {
		msg += ":" + p
	}
	return []byte(msg)
}

// verifySignature checks the hex signature against the principal. Writes the
// error response and returns false on failure.
func (s *Server) verifySignature(w http.ResponseWriter, principal model.Address, msg []byte, sigHex string) bool {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "signature is not valid hex")
		return false
	}
	if err := s.verifier.Verify(principal, msg, sig); err != nil {
		writeError(w, http.StatusForbidden, "signature verification failed")
		return false
	}
	return true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrVaultNotFound), errors.Is(err, model.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrVaultExists), errors.Is(err, model.ErrBatchExists),
		errors.Is(err, model.ErrInvalidBatchStatus), errors.Is(err, model.ErrCannotCancelExecutedBatch):
		return http.StatusConflict
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidRecipientCount), errors.Is(err, model.ErrInvalidVault),
		errors.Is(err, model.ErrMissingAccounts), errors.Is(err, model.ErrAmountOverflow),
		errors.Is(err, model.ErrMemoTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSONBody reads and decodes a JSON request body into v. Returns false
// (and writes an error response) if decoding fails.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
