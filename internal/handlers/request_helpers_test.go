package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func lookupErrorResponse(t *testing.T, err error) (int, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondLookupError(c, "GET /test", err, "thing not found")

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body not JSON: %v", err)
	}
	return w.Code, body.Message
}

func TestRespondLookupErrorMissingDocumentIs404(t *testing.T) {
	code, message := lookupErrorResponse(t, mongo.ErrNoDocuments)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing document, got %d", code)
	}
	if message != "thing not found" {
		t.Fatalf("expected not-found message, got %q", message)
	}
}

func TestRespondLookupErrorStorageFailureIs500(t *testing.T) {
	code, message := lookupErrorResponse(t, errors.New("connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for storage failure, got %d", code)
	}
	if message != "db error" {
		t.Fatalf("expected db error message, got %q", message)
	}
}
