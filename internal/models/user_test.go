package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserJSONNeverContainsPasswordHash(t *testing.T) {
	user := User{
		ID:        primitive.NewObjectID(),
		Name:      "A",
		Email:     "a@x.com",
		Password:  "$2a$10$secret-hash-value",
		IsAdmin:   false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	body, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	if strings.Contains(string(body), "secret-hash-value") {
		t.Fatalf("password hash leaked into JSON: %s", body)
	}
	if strings.Contains(string(body), "\"password\"") {
		t.Fatalf("password field present in JSON: %s", body)
	}
}

func TestProfileShape(t *testing.T) {
	user := User{
		ID:      primitive.NewObjectID(),
		Name:    "A",
		Email:   "a@x.com",
		IsAdmin: true,
	}

	profile := user.Profile()
	if profile.ID != user.ID.Hex() || profile.Name != "A" || profile.Email != "a@x.com" || !profile.IsAdmin {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	body, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	for _, field := range []string{"\"id\"", "\"name\"", "\"email\"", "\"isAdmin\""} {
		if !strings.Contains(string(body), field) {
			t.Fatalf("expected %s in profile JSON, got %s", field, body)
		}
	}
}
