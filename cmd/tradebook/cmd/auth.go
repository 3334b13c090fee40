package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradebook/tradebook/api"
	"github.com/tradebook/tradebook/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session tokens",
	Long: `Authenticate against the journal backend and persist the issued
token pair to the tokens file. Subsequent commands use the stored access
token and refresh it transparently when it expires.

Example:
  tradebook login -u alice`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session tokens",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and session expiry",
	RunE:  runWhoami,
}

var (
	loginUsername string
	loginPassword string
	registerEmail string
	registerFirst string
	registerLast  string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted if omitted)")

	registerCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted if omitted)")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVar(&registerFirst, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerLast, "last-name", "", "last name")
}

func promptValue(label, current string) (string, error) {
	if current != "" {
		return current, nil
	}
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	username, err := promptValue("Username", loginUsername)
	if err != nil {
		return err
	}
	password, err := promptValue("Password", loginPassword)
	if err != nil {
		return err
	}

	if _, err := client.Login(cmd.Context(), username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("✓ Logged in as %s\n", username)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	username, err := promptValue("Username", loginUsername)
	if err != nil {
		return err
	}
	email, err := promptValue("Email", registerEmail)
	if err != nil {
		return err
	}
	password, err := promptValue("Password", loginPassword)
	if err != nil {
		return err
	}

	resp, err := client.Register(cmd.Context(), api.RegisterInput{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: registerFirst,
		LastName:  registerLast,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("✓ Registered and logged in as %s (id %d)\n", resp.User.Username, resp.User.ID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	if err := client.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("✓ Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}

	user, err := client.Me(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	fmt.Printf("User:  %s (id %d)\n", user.Username, user.ID)
	fmt.Printf("Email: %s\n", user.Email)

	store, err := auth.NewStore(cfg.API.TokensFile)
	if err != nil {
		return nil
	}
	if access := store.AccessToken(); access != "" {
		if exp, err := auth.TokenExpiry(access); err == nil {
			fmt.Printf("Access token expires: %s (%s)\n",
				exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
		}
	}
	return nil
}
