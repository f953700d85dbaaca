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
	"golang.org/x/crypto/bcrypt"

	"toolstore/internal/middleware"
	"toolstore/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminUpdateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin *bool  `json:"isAdmin"`
}

// Register creates an account, opens a session and returns the public
// profile. The bcrypt hash never leaves the persistence layer.
func Register(db *mongo.Database, jwtSecret string, sessionTTL time.Duration, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		name := strings.TrimSpace(req.Name)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[USER] [ERROR] register lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			log.Println("[USER] [ERROR] register email exists:", email)
			respondWithError(c, http.StatusBadRequest, route, "user already exists")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[USER] [ERROR] register password hash failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		now := time.Now()
		user := models.User{
			Name:      name,
			Email:     email,
			Password:  string(hash),
			IsAdmin:   false,
			CreatedAt: now,
			UpdatedAt: now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			// the unique email index can still fire when two registrations race
			// past the count check
			if mongo.IsDuplicateKeyError(err) {
				log.Println("[USER] [ERROR] register email exists:", email)
				respondWithError(c, http.StatusBadRequest, route, "user already exists")
				return
			}
			log.Println("[USER] [ERROR] register insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		token, err := issueSessionToken(user.ID, jwtSecret, sessionTTL)
		if err != nil {
			log.Println("[USER] [ERROR] register token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}
		setSessionCookie(c, token, sessionTTL, secureCookie)

		log.Println("[USER] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, user.Profile())
	}
}

// Login verifies credentials and opens a session. Invalid email and invalid
// password produce the same response.
func Login(db *mongo.Database, jwtSecret string, sessionTTL time.Duration, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			if err != mongo.ErrNoDocuments {
				log.Println("[USER] [ERROR] login lookup failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			log.Println("[USER] [ERROR] login unknown email")
			respondWithError(c, http.StatusUnauthorized, route, "invalid email or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Println("[USER] [ERROR] login invalid credentials for:", email)
			respondWithError(c, http.StatusUnauthorized, route, "invalid email or password")
			return
		}

		token, err := issueSessionToken(user.ID, jwtSecret, sessionTTL)
		if err != nil {
			log.Println("[USER] [ERROR] login token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}
		setSessionCookie(c, token, sessionTTL, secureCookie)

		log.Println("[USER] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, user.Profile())
	}
}

// Logout expires the session cookie. The token itself stays valid until its
// exp claim; there is no server-side session store to revoke.
func Logout(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		clearSessionCookie(c, secureCookie)
		c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
	}
}

func GetProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/profile"

		caller, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "not authorized, no token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": caller.ID}).Decode(&user); err != nil {
			respondLookupError(c, route, err, "user not found")
			return
		}

		c.JSON(http.StatusOK, user.Profile())
	}
}

// UpdateProfile applies only the supplied fields; a supplied password is
// re-hashed before storage.
func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/profile"
		defer handlePanic(c, route)

		caller, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "not authorized, no token")
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if name := strings.TrimSpace(req.Name); name != "" {
			update["name"] = name
		}
		if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
			update["email"] = email
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Println("[USER] [ERROR] profile password hash failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
				return
			}
			update["password"] = string(hash)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": caller.ID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusBadRequest, route, "email already in use")
				return
			}
			respondLookupError(c, route, err, "user not found")
			return
		}

		log.Println("[USER] [INFO] profile updated:", user.Email)
		c.JSON(http.StatusOK, user.Profile())
	}
}

// GetUsers lists every account for the admin screen, hashes excluded.
func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(
			ctx,
			bson.M{},
			options.Find().SetProjection(bson.M{"password": 0}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

func GetUserByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOne(
			ctx,
			bson.M{"_id": id},
			options.FindOne().SetProjection(bson.M{"password": 0}),
		).Decode(&user)
		if err != nil {
			respondLookupError(c, route, err, "user not found")
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func UpdateUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		var req adminUpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if name := strings.TrimSpace(req.Name); name != "" {
			update["name"] = name
		}
		if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
			update["email"] = email
		}
		if req.IsAdmin != nil {
			update["isAdmin"] = *req.IsAdmin
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().
				SetReturnDocument(options.After).
				SetProjection(bson.M{"password": 0}),
		).Decode(&user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusBadRequest, route, "email already in use")
				return
			}
			respondLookupError(c, route, err, "user not found")
			return
		}

		log.Println("[USER] [INFO] admin updated user:", user.Email)
		c.JSON(http.StatusOK, user.Profile())
	}
}

// DeleteUser removes a non-admin account. Admin accounts cannot be deleted
// through this path.
func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			respondLookupError(c, route, err, "user not found")
			return
		}

		if user.IsAdmin {
			log.Println("[USER] [ERROR] refusing to delete admin user:", user.Email)
			respondWithError(c, http.StatusBadRequest, route, "cannot delete admin user")
			return
		}

		if _, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[USER] [INFO] user deleted:", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}
