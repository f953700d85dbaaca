package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"toolstore/internal/middleware"
	"toolstore/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	Name      string  `json:"name" binding:"required"`
	Qty       int     `json:"qty" binding:"required,min=1"`
	Image     string  `json:"image" binding:"required"`
	Price     float64 `json:"price" binding:"gte=0"`
	ProductID string  `json:"product" binding:"required"`
}

type shippingAddressRequest struct {
	Address      string `json:"address" binding:"required"`
	City         string `json:"city" binding:"required"`
	Neighborhood string `json:"neighborhood" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
}

type createOrderRequest struct {
	OrderItems      []createOrderItemRequest `json:"orderItems" binding:"dive"`
	ShippingAddress shippingAddressRequest   `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	ItemsPrice      float64                  `json:"itemsPrice" binding:"gte=0"`
	TaxPrice        float64                  `json:"taxPrice" binding:"gte=0"`
	ShippingPrice   float64                  `json:"shippingPrice" binding:"gte=0"`
	TotalPrice      float64                  `json:"totalPrice" binding:"gte=0"`
}

type paymentResultRequest struct {
	ID         string `json:"id" binding:"required"`
	Status     string `json:"status" binding:"required"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

// orderUserRef is the resolved owner embedded in admin and detail responses.
type orderUserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type orderWithUser struct {
	models.Order
	User *orderUserRef `json:"user"`
}

/* =========================
   CREATE ORDER
========================= */

// CreateOrder persists a checkout. Pricing fields are taken as supplied; the
// external payment collaborator is responsible for verifying totals.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		caller, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "not authorized, no token")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := buildOrderFromRequest(req, caller.ID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		order.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[ORDER] [INFO] order created for user:", caller.ID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

func buildOrderFromRequest(req createOrderRequest, userID primitive.ObjectID) (models.Order, error) {
	if len(req.OrderItems) == 0 {
		return models.Order{}, errors.New("No order items")
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		if item.Qty < 1 {
			return models.Order{}, errors.New("item quantity must be at least 1")
		}
		if item.Price < 0 {
			return models.Order{}, errors.New("item price cannot be negative")
		}
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return models.Order{}, errors.New("invalid product id")
		}
		items = append(items, models.OrderItem{
			Name:      item.Name,
			Qty:       item.Qty,
			Image:     item.Image,
			Price:     item.Price,
			ProductID: productID,
		})
	}

	now := time.Now()
	return models.Order{
		UserID:     userID,
		OrderItems: items,
		ShippingAddress: models.ShippingAddress{
			Address:      req.ShippingAddress.Address,
			City:         req.ShippingAddress.City,
			Neighborhood: req.ShippingAddress.Neighborhood,
			Phone:        req.ShippingAddress.Phone,
		},
		PaymentMethod: req.PaymentMethod,
		ItemsPrice:    req.ItemsPrice,
		TaxPrice:      req.TaxPrice,
		ShippingPrice: req.ShippingPrice,
		TotalPrice:    req.TotalPrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

/* =========================
   READ ORDERS
========================= */

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/myorders"

		caller, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "not authorized, no token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"user": caller.ID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderByID resolves the owning user's name and email into the response.
// A deleted owner leaves the user field null rather than failing the request.
func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			respondLookupError(c, route, err, "order not found")
			return
		}

		response := orderWithUser{Order: order}
		var owner models.User
		err = db.Collection("users").FindOne(
			ctx,
			bson.M{"_id": order.UserID},
			options.FindOne().SetProjection(bson.M{"name": 1, "email": 1}),
		).Decode(&owner)
		if err == nil {
			response.User = &orderUserRef{
				ID:    owner.ID.Hex(),
				Name:  owner.Name,
				Email: owner.Email,
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

// GetOrders lists every order for the admin screen, owner id and name
// resolved.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		owners, err := resolveOrderOwners(ctx, db, orders)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		response := make([]orderWithUser, 0, len(orders))
		for _, order := range orders {
			entry := orderWithUser{Order: order}
			if owner, ok := owners[order.UserID]; ok {
				entry.User = &orderUserRef{ID: owner.ID.Hex(), Name: owner.Name}
			}
			response = append(response, entry)
		}

		c.JSON(http.StatusOK, response)
	}
}

func resolveOrderOwners(ctx context.Context, db *mongo.Database, orders []models.Order) (map[primitive.ObjectID]models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(orders))
	seen := make(map[primitive.ObjectID]bool, len(orders))
	for _, order := range orders {
		if !seen[order.UserID] {
			seen[order.UserID] = true
			ids = append(ids, order.UserID)
		}
	}

	owners := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	cursor, err := db.Collection("users").Find(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0, len(ids))
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, user := range users {
		owners[user.ID] = user
	}
	return owners, nil
}

/* =========================
   STATE TRANSITIONS
========================= */

// UpdateOrderToPaid stores the external processor's result verbatim and marks
// the order paid. Verification of the payment belongs to the processor.
func UpdateOrderToPaid(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/pay"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		var req paymentResultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		update := bson.M{
			"isPaid": true,
			"paidAt": now,
			"paymentResult": models.PaymentResult{
				ID:           req.ID,
				Status:       req.Status,
				UpdateTime:   req.UpdateTime,
				EmailAddress: req.Payer.EmailAddress,
			},
			"updatedAt": now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&order)
		if err != nil {
			respondLookupError(c, route, err, "order not found")
			return
		}

		log.Println("[ORDER] [INFO] order paid:", id.Hex())
		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrderToDelivered(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/deliver"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		now := time.Now()
		update := bson.M{
			"isDelivered": true,
			"deliveredAt": now,
			"updatedAt":   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&order)
		if err != nil {
			respondLookupError(c, route, err, "order not found")
			return
		}

		log.Println("[ORDER] [INFO] order delivered:", id.Hex())
		c.JSON(http.StatusOK, order)
	}
}
