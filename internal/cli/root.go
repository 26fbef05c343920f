// Package cli implements the dentctl CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/auth"
	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/clinic"
	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/storage"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "dentctl",
	Short: "Dental practice management from the terminal",
	Long:  "Manage a dental practice's patients and appointments. SQLite-backed, single binary, seeded with demo data on first run.",
}

func init() {
	godotenv.Load()
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $DENTCTL_DB or ~/.dentctl/clinic.db)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("DENTCTL_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dentctl", "clinic.db")
}

func openAdapter() (*storage.SQLite, error) {
	return storage.NewSQLite(getDBPath())
}

func openStore(ctx context.Context, adapter storage.Adapter) (*clinic.Store, error) {
	return clinic.Open(ctx, adapter)
}

// requireSession loads the current session or exits.
func requireSession(ctx context.Context, adapter storage.Adapter) auth.Session {
	sess, err := auth.NewService(adapter).Current(ctx)
	if err != nil {
		exitErr("session", err)
	}
	return sess
}

// requireAdmin loads the current session and exits unless it belongs to a
// practice admin.
func requireAdmin(ctx context.Context, adapter storage.Adapter) auth.Session {
	sess := requireSession(ctx, adapter)
	if !sess.IsAdmin() {
		exitErr("session", fmt.Errorf("this command requires an Admin account"))
	}
	return sess
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
