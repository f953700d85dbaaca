package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"toolstore/internal/middleware"
)

const testSecret = "test-secret"

func TestIssueSessionTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	signed, err := issueSessionToken(userID, testSecret, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("issueSessionToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token did not verify: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["userId"] != userID.Hex() {
		t.Fatalf("expected userId claim %s, got %v", userID.Hex(), claims["userId"])
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("expiration claim missing: %v", err)
	}
	if remaining := time.Until(exp.Time); remaining < 29*24*time.Hour {
		t.Fatalf("expected ~30 day validity, got %v remaining", remaining)
	}
}

func TestExpiredSessionTokenRejected(t *testing.T) {
	signed, err := issueSessionToken(primitive.NewObjectID(), testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issueSessionToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err == nil && token.Valid {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestSetSessionCookieAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/users/login", nil)

	setSessionCookie(c, "token-value", 30*24*time.Hour, false)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	cookie := cookies[0]
	if cookie.Name != middleware.SessionCookie {
		t.Fatalf("expected cookie %q, got %q", middleware.SessionCookie, cookie.Name)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HTTP-only")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("expected SameSite=Strict, got %v", cookie.SameSite)
	}
	if cookie.MaxAge != int((30 * 24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected cookie max age: %d", cookie.MaxAge)
	}
}

func TestClearSessionCookieExpiresImmediately(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)

	clearSessionCookie(c, false)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	cookie := cookies[0]
	if cookie.Value != "" {
		t.Fatalf("expected empty cookie value, got %q", cookie.Value)
	}
	if cookie.MaxAge >= 0 {
		t.Fatalf("expected negative max age, got %d", cookie.MaxAge)
	}
}
