package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/auth"
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in",
		Long:  "Log in with one of the demo accounts (admin@entnt.in/admin123, john@entnt.in/patient123, jane@entnt.in/patient123).",
		Run:   runLogin,
	}
	loginCmd.Flags().StringP("email", "e", "", "Account email (required)")
	loginCmd.Flags().StringP("password", "p", "", "Account password (required)")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Run:   runLogout,
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Run:   runWhoami,
	}

	RootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()

	sess, err := auth.NewService(adapter).Login(cmd.Context(), email, password)
	if err != nil {
		exitErr("login", err)
	}

	b, _ := json.MarshalIndent(sess, "", "  ")
	fmt.Println(string(b))
}

func runLogout(cmd *cobra.Command, args []string) {
	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()

	if err := auth.NewService(adapter).Logout(cmd.Context()); err != nil {
		exitErr("logout", err)
	}
	fmt.Println(`{"ok":true}`)
}

func runWhoami(cmd *cobra.Command, args []string) {
	adapter, err := openAdapter()
	if err != nil {
		exitErr("open store", err)
	}
	defer adapter.Close()

	sess := requireSession(cmd.Context(), adapter)
	b, _ := json.MarshalIndent(sess, "", "  ")
	fmt.Println(string(b))
}
