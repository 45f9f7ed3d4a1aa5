package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}

	var body SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMessage(w, http.StatusOK, "Store deleted")

	var body struct {
		Data MessageBody `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Message != "Store deleted" {
		t.Fatalf("unexpected message %q", body.Data.Message)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "bad input" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := map[pkgerrors.Code]int{
		pkgerrors.CodeNotFound:           http.StatusNotFound,
		pkgerrors.CodeConflict:           http.StatusConflict,
		pkgerrors.CodeUnauthorized:       http.StatusUnauthorized,
		pkgerrors.CodeTokenRevoked:       http.StatusUnauthorized,
		pkgerrors.CodeAdminRequired:      http.StatusUnauthorized,
		pkgerrors.CodeFreshTokenRequired: http.StatusUnauthorized,
		pkgerrors.CodeInvalidCredentials: http.StatusUnauthorized,
		pkgerrors.CodeStorage:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, pkgerrors.New(code, "msg"))
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", code, want, w.Code)
		}
	}
}

func TestWriteErrorHidesStorageDetails(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})
	w := httptest.NewRecorder()
	cause := errors.New(`pq: duplicate key value violates unique constraint "x"`)
	WriteError(context.Background(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, cause, "driver text"))

	if strings.Contains(w.Body.String(), "duplicate key") || strings.Contains(w.Body.String(), "driver text") {
		t.Fatalf("storage error leaked: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "An error occurred while saving to the database.") {
		t.Fatalf("expected generic storage message, got %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "duplicate key") {
		t.Fatalf("expected cause in logs, got %s", logs.String())
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}
