package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/app"
	httpMW "github.com/yungbote/marketplace-backend/internal/http/middleware"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/services"
)

func main() {
	var catalogPath string
	var dryRun bool
	var printTokens bool
	var tokenTTL time.Duration
	var removeProduct string
	flag.StringVar(&catalogPath, "catalog", "", "YAML catalog to load (default: built-in fixture)")
	flag.BoolVar(&dryRun, "dry-run", false, "print the parsed catalog without writing")
	flag.BoolVar(&printTokens, "tokens", false, "print a bearer token for every seeded user")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of printed tokens")
	flag.StringVar(&removeProduct, "remove-product", "", "delete the product with this id from the catalog and every cart, then exit")
	flag.Parse()

	if removeProduct != "" {
		productID, err := uuid.Parse(removeProduct)
		if err != nil {
			fmt.Printf("invalid product id %q: %v\n", removeProduct, err)
			os.Exit(1)
		}
		ctx := context.Background()
		application, err := app.New(ctx)
		if err != nil {
			fmt.Printf("init app: %v\n", err)
			os.Exit(1)
		}
		defer application.Close()
		res, err := application.Services.Catalog.RemoveProduct(ctx, productID)
		if err != nil {
			fmt.Printf("remove product: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("removed product=%s carts_updated=%d\n", res.ProductID, len(res.Carts))
		return
	}

	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	items, err := catalog.items()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	if dryRun {
		for _, u := range catalog.Users {
			fmt.Printf("[dry-run] user %s <%s>\n", u.Username, u.Email)
		}
		for _, it := range items {
			fmt.Printf("[dry-run] product %q price=%s inventory=%d\n", it.Title, it.Price.StringFixed(2), it.InventoryCount)
		}
		return
	}

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	usersCreated, err := seedUsers(ctx, application.Services.Account, catalog.Users)
	if err != nil {
		fmt.Printf("seed users: %v\n", err)
		os.Exit(1)
	}
	productsCreated, err := application.Services.Catalog.ImportCatalog(ctx, items)
	if err != nil {
		fmt.Printf("seed products: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded users=%d products=%d\n", usersCreated, productsCreated)

	if printTokens {
		if application.Cfg.JWTSecretKey == "" {
			fmt.Println("JWT_SECRET_KEY is empty; no tokens printed")
			return
		}
		names := make([]string, 0, len(catalog.Users))
		for _, u := range catalog.Users {
			names = append(names, u.Username)
		}
		users, err := application.Services.Account.GetUsersByUsername(dbctx.Background(ctx), names)
		if err != nil {
			fmt.Printf("load users: %v\n", err)
			os.Exit(1)
		}
		for _, u := range users {
			token, err := httpMW.IssueToken(application.Cfg.JWTSecretKey, u.ID, tokenTTL)
			if err != nil {
				fmt.Printf("sign token for %s: %v\n", u.Username, err)
				os.Exit(1)
			}
			fmt.Printf("%s\t%s\n", u.Username, token)
		}
	}
}

// seedUsers creates each missing user (and its cart) and skips usernames already taken.
func seedUsers(ctx context.Context, accounts services.AccountService, users []catalogUser) (int, error) {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	existing, err := accounts.GetUsersByUsername(dbctx.Background(ctx), names)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]bool, len(existing))
	for _, u := range existing {
		taken[u.Username] = true
	}
	created := 0
	for _, u := range users {
		if taken[u.Username] {
			continue
		}
		if _, _, err := accounts.CreateUser(ctx, services.CreateUserInput{Username: u.Username, Email: u.Email}); err != nil {
			return created, fmt.Errorf("%s: %w", u.Username, err)
		}
		taken[u.Username] = true
		created++
	}
	return created, nil
}
