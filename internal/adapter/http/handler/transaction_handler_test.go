package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/adapter/http/dto"
	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

func TestTransactionHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:        "t1",
				Type:      input.Type,
				Amount:    input.Amount,
				ClientID:  input.ClientID,
				InvoiceID: input.InvoiceID,
			}, nil
		},
	})

	body := `{"type":"income","amount":"40","client_id":"c1","invoice_id":"i1"}`
	rec := httptest.NewRecorder()

	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Type != domain.TransactionTypeIncome || !captured.Amount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.InvoiceID == nil || *captured.InvoiceID != "i1" {
		t.Fatalf("expected invoice i1, got %v", captured.InvoiceID)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "t1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransactionHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"inactive client", fmt.Errorf("%w: client c1 is inactive", domain.ErrClientNotFound), http.StatusNotFound},
		{"overpayment", domain.ErrInvalidLedgerEntry, http.StatusBadRequest},
		{"retries exhausted", domain.ErrConcurrentModification, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transactionServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
					return nil, tt.err
				},
			})

			body := `{"type":"expense","amount":"10","client_id":"c1"}`
			rec := httptest.NewRecorder()

			handler.Create(rec, httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body)))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return nil, domain.ErrTransactionNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/transactions/t9", nil), "id", "t9")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransactionHandler_Delete(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		deleteFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id, Type: domain.TransactionTypeIncome}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/transactions/t1", nil), "id", "t1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
