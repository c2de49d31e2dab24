package admin

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kodax/bulkpay/internal/auth"
	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/kodax/bulkpay/internal/ledger"
	"github.com/kodax/bulkpay/internal/settlement"
)

// --- Mock service and repositories ---

type mockService struct {
	initializeVaultFunc  func(ctx context.Context, authority model.Address) (*model.Vault, error)
	createBatchFunc      func(ctx context.Context, p settlement.CreateBatchParams) (*model.Batch, error)
	executeBatchFunc     func(ctx context.Context, caller, batch, vault model.Address, accounts []ledger.AccountRef) error
	cancelBatchFunc      func(ctx context.Context, caller, batch model.Address) error
	fundVaultFunc        func(ctx context.Context, vault model.Address, amount uint64) error
	fundTokenAccountFunc func(ctx context.Context, account, mint model.Address, amount uint64) error
}

func (m *mockService) InitializeVault(ctx context.Context, authority model.Address) (*model.Vault, error) {
	return m.initializeVaultFunc(ctx, authority)
}

func (m *mockService) CreateBatch(ctx context.Context, p settlement.CreateBatchParams) (*model.Batch, error) {
	return m.createBatchFunc(ctx, p)
}

func (m *mockService) ExecuteBatch(ctx context.Context, caller model.Address, batch, vault model.Address, accounts []ledger.AccountRef) error {
	return m.executeBatchFunc(ctx, caller, batch, vault, accounts)
}

func (m *mockService) CancelBatch(ctx context.Context, caller model.Address, batch model.Address) error {
	return m.cancelBatchFunc(ctx, caller, batch)
}

func (m *mockService) FundVault(ctx context.Context, vault model.Address, amount uint64) error {
	return m.fundVaultFunc(ctx, vault, amount)
}

func (m *mockService) FundTokenAccount(ctx context.Context, account, mint model.Address, amount uint64) error {
	return m.fundTokenAccountFunc(ctx, account, mint, amount)
}

type mockVaultRepo struct {
	getFunc func(ctx context.Context, address model.Address) (*model.Vault, error)
}

func (m *mockVaultRepo) Get(ctx context.Context, address model.Address) (*model.Vault, error) {
	return m.getFunc(ctx, address)
}

func (m *mockVaultRepo) InsertTx(context.Context, *sql.Tx, *model.Vault) error { panic("not used") }

func (m *mockVaultRepo) GetForUpdateTx(context.Context, *sql.Tx, model.Address) (*model.Vault, error) {
	panic("not used")
}

func (m *mockVaultRepo) IncrementBatchCountTx(context.Context, *sql.Tx, model.Address) error {
	panic("not used")
}

func (m *mockVaultRepo) AddTotalPaidTx(context.Context, *sql.Tx, model.Address, uint64) error {
	panic("not used")
}

type mockBatchRepo struct {
	getFunc         func(ctx context.Context, address model.Address) (*model.Batch, error)
	listByVaultFunc func(ctx context.Context, vault model.Address, limit, offset int) ([]model.Batch, error)
}

func (m *mockBatchRepo) Get(ctx context.Context, address model.Address) (*model.Batch, error) {
	return m.getFunc(ctx, address)
}

func (m *mockBatchRepo) ListByVault(ctx context.Context, vault model.Address, limit, offset int) ([]model.Batch, error) {
	return m.listByVaultFunc(ctx, vault, limit, offset)
}

func (m *mockBatchRepo) InsertTx(context.Context, *sql.Tx, *model.Batch) error { panic("not used") }

func (m *mockBatchRepo) GetForUpdateTx(context.Context, *sql.Tx, model.Address) (*model.Batch, error) {
	panic("not used")
}

func (m *mockBatchRepo) UpdateStatusTx(context.Context, *sql.Tx, model.Address, model.BatchStatus, sql.NullTime) error {
	panic("not used")
}

// --- Helpers ---

func newTestAPIServer(svc *mockService, vaults *mockVaultRepo, batches *mockBatchRepo, opts ...ServerOption) *Server {
	return NewServer(svc, vaults, batches, slog.Default(), opts...)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHandleInitializeVault_Success(t *testing.T) {
	svc := &mockService{
		initializeVaultFunc: func(_ context.Context, authority model.Address) (*model.Vault, error) {
			return &model.Vault{
				Address:   model.DeriveVaultAddress(authority),
				Authority: authority,
				IsActive:  true,
				CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults", initializeVaultRequest{Authority: "authority-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp vaultResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Address != string(model.DeriveVaultAddress("authority-1")) {
		t.Fatalf("unexpected vault address %q", resp.Address)
	}
	if !resp.IsActive {
		t.Fatal("expected vault to be active")
	}
}

func TestHandleInitializeVault_MissingAuthority(t *testing.T) {
	srv := newTestAPIServer(&mockService{}, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults", initializeVaultRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleInitializeVault_Duplicate(t *testing.T) {
	svc := &mockService{
		initializeVaultFunc: func(context.Context, model.Address) (*model.Vault, error) {
			return nil, model.ErrVaultExists
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults", initializeVaultRequest{Authority: "authority-1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestHandleGetVault_NotFound(t *testing.T) {
	vaults := &mockVaultRepo{
		getFunc: func(context.Context, model.Address) (*model.Vault, error) {
			return nil, model.ErrVaultNotFound
		},
	}
	srv := newTestAPIServer(&mockService{}, vaults, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/vaults/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandleCreateBatch_Success(t *testing.T) {
	var got settlement.CreateBatchParams
	svc := &mockService{
		createBatchFunc: func(_ context.Context, p settlement.CreateBatchParams) (*model.Batch, error) {
			got = p
			total, _ := model.SumAmounts(p.Recipients)
			return &model.Batch{
				Address:        model.DeriveBatchAddress(p.Vault, p.BatchID),
				Vault:          p.Vault,
				Creator:        p.Creator,
				BatchID:        p.BatchID,
				RecipientCount: len(p.Recipients),
				TotalAmount:    total,
				Status:         model.BatchStatusPending,
				CreatedAt:      time.Now(),
				Recipients:     p.Recipients,
			}, nil
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/batches", createBatchRequest{
		Vault:   "vault-1",
		Creator: "creator-1",
		BatchID: 7,
		Recipients: []recipientRequest{
			{Address: "r1", Amount: 10},
			{Address: "r2", Amount: 20, Memo: "rent"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if got.BatchID != 7 || len(got.Recipients) != 2 {
		t.Fatalf("unexpected params passed to service: %+v", got)
	}

	var resp batchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalAmount != 30 {
		t.Fatalf("expected total 30, got %d", resp.TotalAmount)
	}
	if resp.Status != "PENDING" {
		t.Fatalf("expected PENDING, got %s", resp.Status)
	}
	if len(resp.Recipients) != 2 {
		t.Fatalf("expected 2 recipients in response, got %d", len(resp.Recipients))
	}
}

func TestHandleCreateBatch_InvalidRecipientCount(t *testing.T) {
	svc := &mockService{
		createBatchFunc: func(context.Context, settlement.CreateBatchParams) (*model.Batch, error) {
			return nil, model.ErrInvalidRecipientCount
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/batches", createBatchRequest{
		Vault:   "vault-1",
		Creator: "creator-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleExecuteBatch_Success(t *testing.T) {
	var gotAccounts []ledger.AccountRef
	var gotCaller model.Address
	svc := &mockService{
		executeBatchFunc: func(_ context.Context, caller, batch, vault model.Address, accounts []ledger.AccountRef) error {
			gotCaller = caller
			gotAccounts = accounts
			return nil
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/batches/batch-1/execute", executeBatchRequest{
		Vault:     "vault-1",
		Authority: "authority-1",
		Accounts:  []string{"r1", "r2"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotCaller != "authority-1" {
		t.Fatalf("unexpected caller %q", gotCaller)
	}
	if len(gotAccounts) != 2 || gotAccounts[0].Address != "r1" {
		t.Fatalf("unexpected accounts %+v", gotAccounts)
	}
}

func TestHandleExecuteBatch_InsufficientFunds(t *testing.T) {
	svc := &mockService{
		executeBatchFunc: func(context.Context, model.Address, model.Address, model.Address, []ledger.AccountRef) error {
			return model.ErrInsufficientFunds
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/batches/batch-1/execute", executeBatchRequest{
		Vault:     "vault-1",
		Authority: "authority-1",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestHandleExecuteBatch_Unauthorized(t *testing.T) {
	svc := &mockService{
		executeBatchFunc: func(context.Context, model.Address, model.Address, model.Address, []ledger.AccountRef) error {
			return model.ErrUnauthorized
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/batches/batch-1/execute", executeBatchRequest{
		Vault:     "vault-1",
		Authority: "intruder",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestHandleCancelBatch_AlreadyExecuted(t *testing.T) {
	svc := &mockService{
		cancelBatchFunc: func(context.Context, model.Address, model.Address) error {
			return model.ErrCannotCancelExecutedBatch
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/batches/batch-1/cancel", cancelBatchRequest{
		Authority: "creator-1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestHandleFundVault(t *testing.T) {
	var gotAmount uint64
	svc := &mockService{
		fundVaultFunc: func(_ context.Context, _ model.Address, amount uint64) error {
			gotAmount = amount
			return nil
		},
	}
	srv := newTestAPIServer(svc, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults/vault-1/fund", fundRequest{Amount: 500})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotAmount != 500 {
		t.Fatalf("expected amount 500, got %d", gotAmount)
	}
}

func TestHandleFundVault_ZeroAmount(t *testing.T) {
	srv := newTestAPIServer(&mockService{}, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults/vault-1/fund", fundRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleListBatches(t *testing.T) {
	var gotLimit, gotOffset int
	batches := &mockBatchRepo{
		listByVaultFunc: func(_ context.Context, _ model.Address, limit, offset int) ([]model.Batch, error) {
			gotLimit, gotOffset = limit, offset
			return []model.Batch{
				{Address: "b1", Status: model.BatchStatusPending, CreatedAt: time.Now()},
				{Address: "b2", Status: model.BatchStatusExecuted, CreatedAt: time.Now()},
			}, nil
		},
	}
	srv := newTestAPIServer(&mockService{}, nil, batches)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/vaults/vault-1/batches?limit=10&offset=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotLimit != 10 || gotOffset != 5 {
		t.Fatalf("expected limit=10 offset=5, got %d/%d", gotLimit, gotOffset)
	}
}

func TestSignatureVerification(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	authority := model.Address(hex.EncodeToString(pub))

	svc := &mockService{
		initializeVaultFunc: func(_ context.Context, a model.Address) (*model.Vault, error) {
			return &model.Vault{Address: model.DeriveVaultAddress(a), Authority: a, CreatedAt: time.Now()}, nil
		},
	}
	srv := newTestAPIServer(svc, nil, nil, WithVerifier(auth.Ed25519Verifier{}))

	msg := signingMessage("init", string(authority))
	sig := ed25519.Sign(priv, msg)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults", initializeVaultRequest{
		Authority: string(authority),
		Signature: hex.EncodeToString(sig),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with valid signature, got %d: %s", rec.Code, rec.Body.String())
	}

	// Signature over the wrong message is rejected.
	wrongSig := ed25519.Sign(priv, []byte("something else"))
	rec = doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults", initializeVaultRequest{
		Authority: string(authority),
		Signature: hex.EncodeToString(wrongSig),
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 with invalid signature, got %d", rec.Code)
	}

	// Non-hex signature is a request error, not an auth failure.
	rec = doJSON(t, srv.Handler(), http.MethodPost, "/v1/vaults", initializeVaultRequest{
		Authority: string(authority),
		Signature: "zz-not-hex",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 with malformed signature, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestAPIServer(&mockService{}, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestHandleGetBatch_CachesTerminalBatch(t *testing.T) {
	vault := model.DeriveVaultAddress("authority-cache")
	address := model.DeriveBatchAddress(vault, 7)
	calls := 0
	batches := &mockBatchRepo{
		getFunc: func(_ context.Context, a model.Address) (*model.Batch, error) {
			calls++
			return &model.Batch{
				Address:        a,
				Vault:          vault,
				Creator:        "creator-1",
				BatchID:        7,
				RecipientCount: 1,
				TotalAmount:    10,
				Status:         model.BatchStatusExecuted,
				CreatedAt:      time.Now().UTC(),
				Recipients:     []model.Recipient{{Address: "r1", Amount: 10}},
			}, nil
		},
	}
	srv := newTestAPIServer(&mockService{}, nil, batches)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/batches/"+string(address), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 repository read for an executed batch, got %d", calls)
	}
}

func TestHandleGetBatch_DoesNotCachePending(t *testing.T) {
	vault := model.DeriveVaultAddress("authority-cache-pending")
	address := model.DeriveBatchAddress(vault, 8)
	calls := 0
	batches := &mockBatchRepo{
		getFunc: func(_ context.Context, a model.Address) (*model.Batch, error) {
			calls++
			return &model.Batch{
				Address:        a,
				Vault:          vault,
				Creator:        "creator-1",
				BatchID:        8,
				RecipientCount: 1,
				TotalAmount:    10,
				Status:         model.BatchStatusPending,
				CreatedAt:      time.Now().UTC(),
				Recipients:     []model.Recipient{{Address: "r1", Amount: 10}},
			}, nil
		},
	}
	srv := newTestAPIServer(&mockService{}, nil, batches)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/batches/"+string(address), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected every read of a pending batch to hit the repository, got %d calls", calls)
	}
}
