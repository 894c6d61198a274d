package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"liexport/pkg/auth"
	"liexport/pkg/errors"
	"liexport/pkg/ui"
)

var logoutAll bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Apify API tokens",
	Long: `Manage stored Apify API tokens securely.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables APIFY_TOKEN / LIEXPORT_APIFY_TOKEN (read-only)

Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store an Apify API token securely",
	Long: `Store an Apify API token in the system keychain or an encrypted file.

Tokens are kept under a name so several Apify accounts can coexist. Without
a name the token is stored as 'default', which export uses first.`,
	Example: `  # Store the default token
  liexport auth login

  # Store a token for a second account
  liexport auth login work`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored token",
	Example: `  # Remove the default token
  liexport auth logout

  # Remove every stored token
  liexport auth logout --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored tokens and which one export will use",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove all stored tokens")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return errors.Internal("initialize credential manager", err)
	}

	name := auth.DefaultAccount
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowTokenGuide(os.Stdout)
	fmt.Println()

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("⚠️  A token named '%s' already exists. Replace it? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Apify API token (hidden): ")
	token, err := readPassword(reader)
	if err != nil {
		return errors.Internal("read token", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.Input("auth login", "token is required")
	}

	if err := manager.Store(&auth.Account{Name: name, Token: token}); err != nil {
		return errors.Internal("store token", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Token saved as '%s' (%s)", name, auth.MaskToken(token)))
	fmt.Println("\nExport posts with:")
	fmt.Println("   $ liexport export https://www.linkedin.com/in/<username>/")
	fmt.Println("\n⚠️  The token can start paid actor runs. Never share it!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return errors.Internal("initialize credential manager", err)
	}

	if logoutAll {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Remove ALL stored tokens? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return nil
		}
		if err := manager.DeleteAll(); err != nil {
			return errors.Internal("remove tokens", err)
		}
		ui.PrintSuccess("All stored tokens removed")
		return nil
	}

	name := auth.DefaultAccount
	if len(args) > 0 {
		name = args[0]
	}
	if err := manager.Delete(name); err != nil {
		return errors.Input("auth logout", "%v", err)
	}
	ui.PrintSuccess("Token removed: " + name)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return errors.Internal("initialize credential manager", err)
	}

	if token, err := auth.NewEnvironmentStore().Token(); err == nil {
		ui.PrintInfo("Environment", auth.MaskToken(token))
	}

	accounts, err := manager.List()
	if err != nil {
		return errors.Internal("list tokens", err)
	}

	if len(accounts) == 0 {
		ui.PrintWarning("No Apify token found")
		auth.ShowQuickTokenGuide(ui.Out)
		return nil
	}

	active, _ := manager.RetrieveDefault()

	ui.PrintHighlight("Stored Tokens")
	fmt.Fprintln(ui.Out)
	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		marker := ""
		if active != nil && active.Name == account.Name && active.Token == account.Token {
			marker = " (active)"
		}
		fmt.Fprintf(ui.Out, "%d. %s%s\n", i+1, sanitized.Name, marker)
		fmt.Fprintf(ui.Out, "   Token: %s\n", sanitized.Token)
		if !sanitized.LastModified.IsZero() {
			fmt.Fprintf(ui.Out, "   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(ui.Out)
	}
	return nil
}

// readPassword reads a secret from stdin without echoing
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	// Piped input
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
