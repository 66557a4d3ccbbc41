package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"uniscout-backend/internal/auth"
	"uniscout-backend/internal/catalog"
	"uniscout-backend/internal/config"
	"uniscout-backend/internal/db"
	"uniscout-backend/internal/models"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedUser struct {
	Username    string
	Email       string
	PasswordEnv string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file       string
		skipAdmins bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the university dataset and admin accounts into MongoDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadDatasetFile(file)
			if err != nil {
				return err
			}
			if dryRun {
				for _, u := range records {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", u.Slug, u.Country, u.Ranking)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d universities\n", len(records))
				return nil
			}
			return run(cmd.Context(), records, !skipAdmins)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "cmd/seed/universities.yaml", "YAML dataset of raw university records")
	cmd.Flags().BoolVar(&skipAdmins, "skip-admins", false, "do not upsert admin accounts")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the dataset and print it without touching the database")
	return cmd
}

func run(parent context.Context, records []catalog.University, seedAdmins bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		return err
	}

	now := time.Now().In(cfg.Timezone)
	for _, u := range records {
		filter := bson.M{"slug": u.Slug}
		update := bson.M{
			"$set":         universitySet(u, now),
			"$setOnInsert": bson.M{"_id": u.ID, "created_at": now},
		}
		if _, err := cols.Universities.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("seed error for %s: %w", u.Name, err)
		}
	}
	log.Printf("seed universities: %d upserted", len(records))

	if !seedAdmins {
		log.Println("seed completed")
		return nil
	}

	adminUsers := []seedUser{
		{
			Username:    envOrDefault("ADMIN_USER", "admin"),
			Email:       envOrDefault("ADMIN_EMAIL", ""),
			PasswordEnv: "ADMIN_PASSWORD",
		},
		{
			Username:    envOrDefault("ADMIN_USER_2", "admin2"),
			Email:       envOrDefault("ADMIN_EMAIL_2", ""),
			PasswordEnv: "ADMIN_PASSWORD_2",
		},
	}

	for _, admin := range adminUsers {
		password := os.Getenv(admin.PasswordEnv)
		if password == "" {
			log.Printf("seed admin: %s missing, skipping (%s)", admin.Username, admin.PasswordEnv)
			continue
		}
		if err := seedAdminUser(ctx, cols, admin.Username, admin.Email, password, cfg.Timezone); err != nil {
			return fmt.Errorf("seed admin error for %s: %w", admin.Username, err)
		}
	}

	log.Println("seed completed")
	return nil
}

func seedAdminUser(ctx context.Context, cols *db.Collections, username, email, password string, loc *time.Location) error {
	if cols == nil || cols.Users == nil {
		return nil
	}
	if username == "" || password == "" {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	filter := bson.M{"username": username}
	set := bson.M{
		"passwordHash": hash,
		"role":         models.UserRoleAdmin,
		"updatedAt":    now,
	}
	if email != "" {
		set["email"] = email
	}
	setOnInsert := bson.M{
		"_id":       primitive.NewObjectID().Hex(),
		"username":  username,
		"createdAt": now,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": setOnInsert,
	}
	_, err = cols.Users.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
