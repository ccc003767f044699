package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-store/internal/inventory"
)

type seedProduct struct {
	name        string
	description string
	price       string
	quantity    int
	categories  []string
}

var products = []seedProduct{
	{"Intel Core i9-9900K", "8 cores, 16 threads, up to 5.0 GHz", "475.99", 12, []string{"CPU"}},
	{"AMD Ryzen 7 2700X", "8 cores, 16 threads, Wraith Prism cooler", "549.99", 8, []string{"CPU"}},
	{"NVIDIA GeForce RTX 2080", "8 GB GDDR6, ray tracing", "1199.00", 5, []string{"GPU"}},
	{"AMD Radeon RX 580", "8 GB GDDR5", "249.99", 20, []string{"GPU"}},
	{"Corsair Vengeance LPX 16GB", "2x8GB DDR4-3200", "89.50", 40, []string{"Memory"}},
	{"Samsung 970 EVO 1TB", "NVMe M.2 SSD", "169.99", 25, []string{"Storage"}},
	{"Seagate BarraCuda 4TB", "3.5\" SATA hard drive", "94.99", 30, []string{"Storage"}},
	{"ASUS ROG Strix Z390-E", "ATX motherboard, socket LGA1151", "219.00", 10, []string{"Motherboard"}},
	{"Logitech MX Master 3", "Wireless mouse", "99.99", 50, []string{"Peripherals"}},
	{"Keychron K2", "Wireless mechanical keyboard", "79.00", 35, []string{"Peripherals", "Keyboards"}},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	store := inventory.NewPostgresStore(pool)

	log.Println("seeding catalog...")
	for _, sp := range products {
		if err := seedOne(ctx, store, sp); err != nil {
			log.Printf("seed %q: %v", sp.name, err)
		}
	}
	log.Println("seeding completed")
}

func seedOne(ctx context.Context, store *inventory.PostgresStore, sp seedProduct) error {
	if _, err := store.GetProductByName(ctx, sp.name); err == nil {
		return nil
	} else if !errors.Is(err, inventory.ErrNotFound) {
		return err
	}

	price, err := decimal.NewFromString(sp.price)
	if err != nil {
		return err
	}

	product := inventory.Product{
		Name:        sp.name,
		Description: sp.description,
		Price:       price,
		Quantity:    sp.quantity,
	}
	for _, name := range sp.categories {
		category, err := store.GetCategoryByName(ctx, name)
		if errors.Is(err, inventory.ErrNotFound) {
			category = inventory.Category{Name: name}
			if err := store.CreateCategory(ctx, &category); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		product.Categories = append(product.Categories, category)
	}
	return store.CreateProduct(ctx, &product)
}
