package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tp-bda/dashboard-ventas/internal/adapters/sqlstore"
	"github.com/tp-bda/dashboard-ventas/internal/config"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CatalogItem represents a product in the seed data JSON
type CatalogItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// CatalogData holds the products to be seeded
var CatalogData = []byte(`[
  { "name": "Notebook 14\"", "description": "Intel i5, 8GB RAM, SSD 256GB", "price": 850000, "category": "Computación" },
  { "name": "Notebook 15\"", "description": "Ryzen 7, 16GB RAM, SSD 512GB", "price": 1250000, "category": "Computación" },
  { "name": "Monitor 24\"", "description": "IPS Full HD 75Hz", "price": 210000, "category": "Computación" },
  { "name": "Teclado mecánico", "description": "Switches red, layout español", "price": 65000, "category": "Periféricos" },
  { "name": "Mouse inalámbrico", "description": "2.4GHz, 1600 DPI", "price": 18000, "category": "Periféricos" },
  { "name": "Auriculares Bluetooth", "description": "Cancelación de ruido", "price": 95000, "category": "Audio" },
  { "name": "Parlante portátil", "description": "Resistente al agua IPX7", "price": 72000, "category": "Audio" },
  { "name": "Smartphone A15", "description": "128GB, cámara 50MP", "price": 420000, "category": "Telefonía" },
  { "name": "Smartphone X Pro", "description": "256GB, 5G", "price": 980000, "category": "Telefonía" },
  { "name": "Cargador USB-C 65W", "description": "Carga rápida PD", "price": 29000, "category": "Accesorios" },
  { "name": "Cable HDMI 2m", "description": "4K 60Hz", "price": 9000, "category": "Accesorios" },
  { "name": "Smart TV 50\"", "description": "4K UHD, Android TV", "price": 690000, "category": "Televisores" }
]`)

var branches = []sqlstore.BranchModel{
	{Name: "Centro", Location: "Av. Corrientes 1234, CABA", Phone: strPtr("+541143210001")},
	{Name: "Palermo", Location: "Av. Santa Fe 3456, CABA", Phone: strPtr("+541143210002")},
	{Name: "Belgrano", Location: "Av. Cabildo 2100, CABA", Phone: strPtr("+541143210003")},
	{Name: "Córdoba", Location: "Bv. San Juan 450, Córdoba", Phone: strPtr("+543514210004")},
	{Name: "Rosario", Location: "Córdoba 1550, Rosario", Phone: nil},
}

var sellerNames = [][2]string{
	{"Ana", "Gómez"}, {"Luis", "Pérez"}, {"María", "Fernández"}, {"Jorge", "López"},
	{"Lucía", "Martínez"}, {"Diego", "Sánchez"}, {"Sofía", "Romero"}, {"Martín", "Díaz"},
	{"Valeria", "Torres"}, {"Pablo", "Álvarez"},
}

func strPtr(s string) *string { return &s }

func main() {
	days := flag.Int("days", 180, "days of purchase history to generate")
	purchasesPerDay := flag.Int("per-day", 12, "average purchases per day")
	reset := flag.Bool("reset", false, "drop every table before seeding")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	store, err := sqlstore.NewRepository(ctx, sqlstore.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DBURL,
		MaxConns: 4,
		TimeZone: cfg.AppTimezone,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	log.Println("✓ Database connection established")

	db := store.DB().WithContext(ctx)
	if *reset {
		if err := db.Migrator().DropTable(sqlstore.AllModels()...); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✓ Tables dropped")
	}
	if err := db.AutoMigrate(sqlstore.AllModels()...); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	log.Println("✓ Schema migrated")

	var existing int64
	if err := db.Model(&sqlstore.BranchModel{}).Count(&existing).Error; err != nil {
		log.Fatalf("Failed to count branches: %v", err)
	}
	if existing > 0 {
		log.Println("Database already has branches. Run with -reset to seed again.")
		return
	}

	var catalog []CatalogItem
	if err := json.Unmarshal(CatalogData, &catalog); err != nil {
		log.Fatalf("Failed to parse catalog data: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		products, err := seedCatalog(tx, catalog)
		if err != nil {
			return err
		}
		sellersByBranch, err := seedBranches(tx, products)
		if err != nil {
			return err
		}
		count, err := seedPurchases(tx, sellersByBranch, products, *days, *purchasesPerDay)
		if err != nil {
			return err
		}
		log.Printf("✓ %d purchases generated over %d days", count, *days)
		return seedUsers(tx)
	})
	if err != nil {
		log.Fatalf("Seeder failed: %v", err)
	}

	log.Printf("Seeder completed: %d branches, %d products", len(branches), len(catalog))
}

func seedCatalog(tx *gorm.DB, catalog []CatalogItem) ([]sqlstore.ProductModel, error) {
	categoryIDs := map[string]int64{}
	products := make([]sqlstore.ProductModel, 0, len(catalog))

	for _, item := range catalog {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			category := sqlstore.CategoryModel{Name: item.Category}
			if err := tx.Create(&category).Error; err != nil {
				return nil, err
			}
			categoryID = category.ID
			categoryIDs[item.Category] = categoryID
		}

		description := item.Description
		product := sqlstore.ProductModel{
			Name:        item.Name,
			Description: &description,
			UnitPrice:   decimal.NewFromFloat(item.Price),
			CategoryID:  categoryID,
		}
		if err := tx.Create(&product).Error; err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	log.Printf("✓ %d categories, %d products", len(categoryIDs), len(products))
	return products, nil
}

func seedBranches(tx *gorm.DB, products []sqlstore.ProductModel) (map[int64][]int64, error) {
	sellersByBranch := map[int64][]int64{}
	nationalID := 30000000

	for i := range branches {
		branch := &branches[i]
		if err := tx.Create(branch).Error; err != nil {
			return nil, err
		}

		// Two sellers per branch
		for j := 0; j < 2; j++ {
			name := sellerNames[(i*2+j)%len(sellerNames)]
			nationalID++
			seller := sqlstore.SellerModel{
				FirstName:  name[0],
				LastName:   name[1],
				NationalID: strconv.Itoa(nationalID),
				BranchID:   branch.ID,
			}
			if err := tx.Create(&seller).Error; err != nil {
				return nil, err
			}
			sellersByBranch[branch.ID] = append(sellersByBranch[branch.ID], seller.ID)
		}

		// The last branch carries a reduced assortment
		assortment := products
		if i == len(branches)-1 {
			assortment = products[:len(products)/2]
		}
		for k, product := range assortment {
			stock := sqlstore.InventoryModel{
				BranchID:      branch.ID,
				ProductID:     product.ID,
				StockQuantity: int64(5 + (k*7+i*3)%40),
			}
			if err := tx.Create(&stock).Error; err != nil {
				return nil, err
			}
		}
	}
	log.Printf("✓ %d branches with sellers and inventory", len(branches))
	return sellersByBranch, nil
}

// seedPurchases generates a deterministic purchase history. Branch weights skew sales so the
// ranking shows every tier.
func seedPurchases(tx *gorm.DB, sellersByBranch map[int64][]int64, products []sqlstore.ProductModel, days, perDay int) (int, error) {
	rng := rand.New(rand.NewSource(42))
	weights := []int{40, 25, 18, 12, 5}

	branchIDs := make([]int64, len(branches))
	for i, b := range branches {
		branchIDs[i] = b.ID
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	count := 0
	for d := days; d >= 0; d-- {
		day := today.AddDate(0, 0, -d)
		n := perDay/2 + rng.Intn(perDay+1)
		for p := 0; p < n; p++ {
			branchID := pickWeighted(rng, branchIDs, weights)
			purchase := sqlstore.PurchaseModel{
				BranchID:    branchID,
				PurchasedAt: day.Add(time.Duration(9*3600+rng.Intn(11*3600)) * time.Second),
			}
			if sellers := sellersByBranch[branchID]; len(sellers) > 0 && rng.Intn(10) > 0 {
				sellerID := sellers[rng.Intn(len(sellers))]
				purchase.SellerID = &sellerID
			}

			lines := make([]sqlstore.PurchaseLineModel, 1+rng.Intn(3))
			total := decimal.Zero
			for l := range lines {
				product := products[rng.Intn(len(products))]
				lines[l] = sqlstore.PurchaseLineModel{
					ProductID: product.ID,
					Quantity:  int64(1 + rng.Intn(3)),
					UnitCost:  product.UnitPrice,
				}
				total = total.Add(product.UnitPrice.Mul(decimal.NewFromInt(lines[l].Quantity)))
			}
			purchase.Total = total

			if err := tx.Create(&purchase).Error; err != nil {
				return count, err
			}
			for l := range lines {
				lines[l].PurchaseID = purchase.ID
			}
			if err := tx.Create(&lines).Error; err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func pickWeighted(rng *rand.Rand, ids []int64, weights []int) int64 {
	sum := 0
	for _, w := range weights[:len(ids)] {
		sum += w
	}
	r := rng.Intn(sum)
	for i, w := range weights[:len(ids)] {
		if r < w {
			return ids[i]
		}
		r -= w
	}
	return ids[len(ids)-1]
}

func seedUsers(tx *gorm.DB) error {
	users := []struct {
		username, email, password string
		createdAt                 time.Time
	}{
		{"admin", "admin@dashboard.com", "admin123", time.Now().UTC().AddDate(-1, 0, 0)},
		{"analista", "analista@gmail.com", "analista123", time.Now().UTC().AddDate(0, -2, 0)},
		{"gerente", "gerente@dashboard.com", "gerente123", time.Now().UTC().AddDate(0, 0, -3)},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		email := u.email
		model := sqlstore.UserModel{
			Username:     u.username,
			Email:        &email,
			PasswordHash: string(hash),
			CreatedAt:    u.createdAt,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
	}
	log.Printf("✓ %d users (admin password: admin123)", len(users))
	return nil
}
