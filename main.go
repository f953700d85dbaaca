package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"toolstore/internal/config"
	"toolstore/internal/database"
	"toolstore/internal/handlers"
	"toolstore/internal/middleware"
)

func main() {
	seed := flag.Bool("seed", false, "drop and reseed the database, then exit")
	flag.Parse()

	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if *seed {
		if err := database.Seed(db); err != nil {
			log.Fatal("seed failed:", err)
		}
		log.Println("seed completed")
		return
	}

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}

	if config.AppEnv.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	secret := config.AppEnv.JWTSecret
	sessionTTL := config.AppEnv.SessionTTL
	secureCookie := config.AppEnv.IsProduction()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running")
	})
	r.GET("/api/config/paypal", handlers.GetPayPalConfig(config.AppEnv.PayPalClientID))

	protect := middleware.Protect(db, secret)
	admin := middleware.Admin()

	users := r.Group("/api/users")
	{
		users.POST("", handlers.Register(db, secret, sessionTTL, secureCookie))
		users.POST("/login", handlers.Login(db, secret, sessionTTL, secureCookie))
		users.POST("/logout", handlers.Logout(secureCookie))
		users.GET("/profile", protect, handlers.GetProfile(db))
		users.PUT("/profile", protect, handlers.UpdateProfile(db))

		users.GET("", protect, admin, handlers.GetUsers(db))
		users.GET("/:id", protect, admin, handlers.GetUserByID(db))
		users.PUT("/:id", protect, admin, handlers.UpdateUser(db))
		users.DELETE("/:id", protect, admin, handlers.DeleteUser(db))
	}

	products := r.Group("/api/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/top", handlers.GetTopProducts(db))
		products.GET("/:id", handlers.GetProductByID(db))

		products.POST("", protect, admin, handlers.CreateProduct(db))
		products.PUT("/:id", protect, admin, handlers.UpdateProduct(db))
		products.DELETE("/:id", protect, admin, handlers.DeleteProduct(db))

		products.POST("/:id/reviews", protect, handlers.CreateProductReview(db))
	}

	orders := r.Group("/api/orders")
	orders.Use(protect)
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("/myorders", handlers.GetMyOrders(db))
		orders.GET("/:id", handlers.GetOrderByID(db))
		orders.PUT("/:id/pay", handlers.UpdateOrderToPaid(db))

		orders.GET("", admin, handlers.GetOrders(db))
		orders.PUT("/:id/deliver", admin, handlers.UpdateOrderToDelivered(db))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": fmt.Sprintf("not found - %s", c.Request.URL.Path),
		})
	})

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
