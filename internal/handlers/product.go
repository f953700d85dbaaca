package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"toolstore/internal/middleware"
	"toolstore/internal/models"
)

type updateProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Price        float64  `json:"price" binding:"gte=0"`
	Description  string   `json:"description" binding:"required"`
	Images       []string `json:"images" binding:"required,min=1"`
	Brand        string   `json:"brand" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	CountInStock int      `json:"countInStock" binding:"gte=0"`
}

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

/*
GET /api/products
- keyword: optional case-insensitive substring match on name
- pageNumber: optional, defaults to 1; fixed page size of 8
- response: {products, page, pages} with pages = ceil(count/8)
*/
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := bson.M{}
		if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
			filter["name"] = bson.M{"$regex": keyword, "$options": "i"}
		}

		page := parsePageNumber(c.Query("pageNumber"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		findOptions := options.Find().
			SetSkip(productPageSize * (page - 1)).
			SetLimit(productPageSize)

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] returning %d products page=%d", route, len(products), page)
		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"page":     page,
			"pages":    productPages(count, productPageSize),
		})
	}
}

// GetTopProducts returns the three highest-rated products. The secondary _id
// sort keeps the order deterministic across equal ratings.
func GetTopProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/top"

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}).
			SetLimit(3)

		cursor, err := db.Collection("products").Find(ctx, bson.M{}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			respondLookupError(c, route, err, "product not found")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

// CreateProduct inserts a placeholder record meant for an immediate follow-up
// edit from the admin screen.
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		caller, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "not authorized, no token")
			return
		}

		now := time.Now()
		product := models.Product{
			UserID:       caller.ID,
			Name:         "Sample name",
			Images:       []string{"/images/sample.jpg"},
			Brand:        "Sample brand",
			Category:     "Sample category",
			Description:  "Sample description",
			Reviews:      []models.Review{},
			Rating:       0,
			NumReviews:   0,
			Price:        0,
			CountInStock: 0,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		product.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[PRODUCT] [INFO] placeholder product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct overwrites the editable field set of a product.
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{
			"name":         strings.TrimSpace(req.Name),
			"price":        req.Price,
			"description":  req.Description,
			"images":       req.Images,
			"brand":        req.Brand,
			"category":     req.Category,
			"countInStock": req.CountInStock,
			"updatedAt":    time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&product)
		if err != nil {
			respondLookupError(c, route, err, "product not found")
			return
		}

		log.Println("[PRODUCT] [INFO] product updated:", product.ID.Hex())
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		log.Println("[PRODUCT] [INFO] product deleted:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

// CreateProductReview appends a review authored by the caller and recomputes
// the aggregate rating. The read-modify-write is not atomic with respect to
// concurrent reviewers; the last recompute wins.
func CreateProductReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/reviews"
		defer handlePanic(c, route)

		caller, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "not authorized, no token")
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			respondLookupError(c, route, err, "product not found")
			return
		}

		if hasReviewed(product.Reviews, caller.ID) {
			log.Println("[PRODUCT] [ERROR] duplicate review by:", caller.Email)
			respondWithError(c, http.StatusBadRequest, route, "product already reviewed")
			return
		}

		review := models.Review{
			ID:        primitive.NewObjectID(),
			UserID:    caller.ID,
			Name:      caller.Name,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: time.Now(),
		}

		reviews := append(product.Reviews, review)
		rating, numReviews := recomputeRating(reviews)

		update := bson.M{
			"reviews":    reviews,
			"rating":     rating,
			"numReviews": numReviews,
			"updatedAt":  time.Now(),
		}

		if _, err := db.Collection("products").UpdateByID(ctx, id, bson.M{"$set": update}); err != nil {
			log.Println("[PRODUCT] [ERROR] review update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[PRODUCT] [INFO] review added to:", id.Hex())
		c.JSON(http.StatusCreated, gin.H{"message": "review added"})
	}
}
