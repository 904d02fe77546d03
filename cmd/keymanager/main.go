package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"guru-api/internal/config"
	"guru-api/internal/db"
	"guru-api/internal/keys"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "keymanager",
		Short: "Manage tutoring API access keys",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./configs/config.yaml", "path to the config file")
	rootCmd.AddCommand(createCmd(), revokeCmd(), listCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createCmd() *cobra.Command {
	var (
		owner     string
		credits   int
		unlimited bool
		days      int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new access key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var validFor time.Duration
			if days > 0 {
				validFor = time.Duration(days) * 24 * time.Hour
			}
			key, err := keys.NewService(store).Issue(cmd.Context(), owner, credits, unlimited, validFor)
			if err != nil {
				return err
			}
			printIssuedKey(key)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner label, e.g. a client name")
	cmd.Flags().IntVar(&credits, "credits", 0, "credit grant (ignored with --unlimited)")
	cmd.Flags().BoolVar(&unlimited, "unlimited", false, "issue a key without a credit quota")
	cmd.Flags().IntVar(&days, "days", 365, "validity in days, 0 for a key that never expires")
	return cmd
}

func revokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <key>",
		Short: "Deactivate an access key without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.RevokeKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Key revoked.")
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issued keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			all, err := store.ListKeys(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range all {
				fmt.Printf("%-8d %-20s %-12s %-10s expires=%s active=%v\n",
					k.ID, k.OwnerName, redact(k.KeyString), creditsLabel(&k), expiryLabel(&k), k.IsActive)
			}
			return nil
		},
	}
}

func openStore() (*db.Store, error) {
	_ = godotenv.Load()
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	bunDB := db.NewDB(sqldb, cfg.Database.Debug)
	if err := db.InitDB(context.Background(), bunDB); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return db.NewStore(bunDB), nil
}

func printIssuedKey(key *db.APIKey) {
	line := strings.Repeat("=", 40)
	fmt.Println(line)
	fmt.Printf("API key created for %q\n", key.OwnerName)
	fmt.Println(line)
	fmt.Printf("Key     : %s\n", key.KeyString)
	fmt.Printf("Credits : %s\n", creditsLabel(key))
	fmt.Printf("Expires : %s\n", expiryLabel(key))
	fmt.Println(line)
	fmt.Println("The key is shown only this once. Store it now.")
}

func creditsLabel(key *db.APIKey) string {
	if key.IsUnlimited {
		return "Unlimited"
	}
	return fmt.Sprintf("%d", key.Credits)
}

func expiryLabel(key *db.APIKey) string {
	if key.ExpiresAt == nil {
		return "never"
	}
	return key.ExpiresAt.Format(time.RFC3339)
}

func redact(keyString string) string {
	if len(keyString) <= 8 {
		return keyString
	}
	return keyString[:8] + "..."
}
