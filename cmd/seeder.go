package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	notificationmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/notification"
	rotationmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/rotation"
	usermodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-rotation/internal/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with initial data",
	Long:  `Seed the record store with the default rotation, an admin user and notification settings. Idempotent: existing records are left alone.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		store, err := initStore(cfg.Storage)
		if err != nil {
			log.Fatalf("failed to init storage: %v", err)
		}

		ctx := context.Background()
		now := time.Now()

		if seedRecord(ctx, store, rotationmodel.Key, func() interface{} {
			return rotationmodel.Default(now)
		}) {
			fmt.Println("Seeded default rotation state")
		}

		if seedRecord(ctx, store, usermodel.Key, func() interface{} {
			hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), cfg.Security.BCryptCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}
			return []usermodel.User{{
				ID:        uuid.NewString(),
				Username:  "admin",
				Password:  string(hash),
				Name:      "Administrator",
				Role:      usermodel.RoleManager,
				IsActive:  true,
				CreatedAt: now,
			}}
		}) {
			fmt.Println("Seeded admin user: admin")
		}

		if seedRecord(ctx, store, notificationmodel.Key, func() interface{} {
			return notificationmodel.Default()
		}) {
			fmt.Println("Seeded default notification settings")
		}
	},
}

// seedRecord writes the value only when the key is absent. Reports
// whether a write happened.
func seedRecord(ctx context.Context, store storage.Store, key string, value func() interface{}) bool {
	_, err := store.Get(ctx, key)
	if err == nil {
		fmt.Printf("record %s already exists; skipping\n", key)
		return false
	}
	if !errors.Is(err, storage.ErrNotFound) {
		log.Fatalf("failed to read record %s: %v", key, err)
	}

	if err := storage.PutJSON(ctx, store, key, value(), 0); err != nil {
		log.Fatalf("failed to seed record %s: %v", key, err)
	}
	return true
}
