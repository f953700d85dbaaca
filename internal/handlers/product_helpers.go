package handlers

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"toolstore/internal/models"
)

// productPageSize is fixed; clients only choose the page number.
const productPageSize = 8

func parsePageNumber(raw string) int64 {
	page, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func productPages(count, pageSize int64) int64 {
	if count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// recomputeRating returns the arithmetic mean of all review ratings and the
// review count.
func recomputeRating(reviews []models.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

func hasReviewed(reviews []models.Review, userID primitive.ObjectID) bool {
	for _, review := range reviews {
		if review.UserID == userID {
			return true
		}
	}
	return false
}
