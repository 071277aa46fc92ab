package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/pkoval/tally/internal/database/repository"
)

// SeedDefaults ensures a baseline account and categories exist for new
// databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	accRepo := repository.NewAccountRepo(db)
	accounts, err := accRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("acct:Cash")).String()
		acct := repository.Account{ID: id, Name: "Cash", AccountType: "cash", Currency: "USD"}
		if err := accRepo.Upsert(ctx, acct); err != nil {
			return err
		}
	}

	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	defaults := []string{
		"Income",
		"Bills > Rent",
		"Bills > Utilities",
		"Subscriptions",
		"Food > Groceries",
		"Transport",
		"Savings",
		"Health",
		"Entertainment",
	}
	for idx, path := range defaults {
		parts := strings.Split(path, ">")
		var parentID *string
		for _, raw := range parts {
			name := strings.TrimSpace(raw)
			id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+name)).String()
			cat := repository.Category{ID: id, Name: name, ParentID: parentID, SortOrder: idx}
			if err := catRepo.Upsert(ctx, cat); err != nil {
				return err
			}
			parentID = &id
		}
	}
	return nil
}
