package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"toolstore/internal/models"
)

func TestProductPagesCeiling(t *testing.T) {
	tests := []struct {
		count int64
		want  int64
	}{
		{0, 0},
		{1, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
	}
	for _, tt := range tests {
		if got := productPages(tt.count, productPageSize); got != tt.want {
			t.Fatalf("productPages(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestParsePageNumberDefaultsToOne(t *testing.T) {
	for _, raw := range []string{"", "0", "-3", "abc"} {
		if got := parsePageNumber(raw); got != 1 {
			t.Fatalf("parsePageNumber(%q) = %d, want 1", raw, got)
		}
	}
	if got := parsePageNumber("4"); got != 4 {
		t.Fatalf("parsePageNumber(4) = %d, want 4", got)
	}
}

func TestRecomputeRatingMean(t *testing.T) {
	reviews := []models.Review{
		{Rating: 4},
		{Rating: 5},
		{Rating: 3},
	}
	rating, numReviews := recomputeRating(reviews)
	if rating != 4 {
		t.Fatalf("expected mean rating 4, got %v", rating)
	}
	if numReviews != 3 {
		t.Fatalf("expected 3 reviews, got %d", numReviews)
	}
}

func TestRecomputeRatingEmpty(t *testing.T) {
	rating, numReviews := recomputeRating(nil)
	if rating != 0 || numReviews != 0 {
		t.Fatalf("expected zero rating and count, got %v/%d", rating, numReviews)
	}
}

func TestHasReviewedMatchesByUser(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	reviews := []models.Review{{UserID: alice, Rating: 5}}

	if !hasReviewed(reviews, alice) {
		t.Fatal("expected alice's review to be detected")
	}
	if hasReviewed(reviews, bob) {
		t.Fatal("bob has not reviewed, expected false")
	}
}
