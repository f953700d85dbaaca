package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"toolstore/internal/models"
)

// Seed drops the users, products and orders collections and loads a small
// sample data set. Intended for local development only.
func Seed(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, name := range []string{"orders", "products", "users"} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return err
		}
	}

	now := time.Now()

	users := make([]interface{}, 0, len(sampleUsers))
	adminID := primitive.NewObjectID()
	for i, u := range sampleUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		id := primitive.NewObjectID()
		if i == 0 {
			id = adminID
		}
		users = append(users, models.User{
			ID:        id,
			Name:      u.name,
			Email:     u.email,
			Password:  string(hash),
			IsAdmin:   u.isAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if _, err := db.Collection("users").InsertMany(ctx, users); err != nil {
		return err
	}

	products := make([]interface{}, 0, len(sampleProducts))
	for _, p := range sampleProducts {
		p.UserID = adminID
		p.Reviews = []models.Review{}
		p.CreatedAt = now
		p.UpdatedAt = now
		products = append(products, p)
	}
	if _, err := db.Collection("products").InsertMany(ctx, products); err != nil {
		return err
	}

	count, err := db.Collection("products").CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	log.Printf("Seed: inserted %d users and %d products", len(users), count)
	return nil
}

var sampleUsers = []struct {
	name     string
	email    string
	password string
	isAdmin  bool
}{
	{"Admin", "admin@toolstore.dev", "admin123", true},
	{"John Doe", "john@example.com", "123456", false},
	{"Jane Doe", "jane@example.com", "123456", false},
}

var sampleProducts = []models.Product{
	{
		Name:         "Cordless Hammer Drill 18V",
		Images:       []string{"/images/hammer-drill.jpg"},
		Brand:        "Bosch",
		Category:     "Power Tools",
		Description:  "Compact 18V hammer drill with two-speed gearbox and 38 Nm of torque.",
		Price:        1029,
		CountInStock: 10,
	},
	{
		Name:         "Impact Driver Kit 1/4in",
		Images:       []string{"/images/impact-driver.jpg", "/images/impact-driver-case.jpg"},
		Brand:        "Bauker",
		Category:     "Power Tools",
		Description:  "Variable speed reversible impact driver with two 2.0Ah batteries and charger.",
		Price:        579,
		CountInStock: 7,
	},
	{
		Name:         "Circular Saw 7-1/4in 1500W",
		Images:       []string{"/images/circular-saw.jpg"},
		Brand:        "Dewalt",
		Category:     "Power Tools",
		Description:  "1500W circular saw running at 5800rpm, built for demanding cuts.",
		Price:        899,
		CountInStock: 5,
	},
	{
		Name:         "Adjustable Wrench Set",
		Images:       []string{"/images/wrench-set.jpg"},
		Brand:        "Stanley",
		Category:     "Hand Tools",
		Description:  "Three-piece chrome vanadium adjustable wrench set, 6, 8 and 10 inch.",
		Price:        45,
		CountInStock: 25,
	},
}
