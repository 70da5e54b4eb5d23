package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/acejesus/aceai/internal/auth"
	"github.com/acejesus/aceai/internal/config"
	apierrors "github.com/acejesus/aceai/internal/errors"
	"github.com/acejesus/aceai/internal/store"
)

var loginGoogleTokenFlag string

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in to sync chats across devices",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginGoogleTokenFlag != "" {
			return runGoogleLogin(loginGoogleTokenFlag)
		}
		email := ""
		if len(args) > 0 {
			email = args[0]
		}
		return runLogin(email)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginGoogleTokenFlag, "google-token", "", "Sign in with a Google ID token instead of a password")
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an AceAI account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRegister()
	},
}

var logoutPurgeFlag bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and return to guest mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogout(logoutPurgeFlag)
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutPurgeFlag, "purge", false, "Also delete this account's synced chats")
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetSessionPath()
		if err != nil {
			return err
		}
		session, err := auth.LoadSession(path)
		if err != nil {
			fmt.Println("Not signed in. Chats are kept locally.")
			return nil
		}
		fmt.Printf("%s (%s)\n", session.DisplayName(), session.Email)
		return nil
	},
}

func authClient() (*auth.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.AuthURL == "" {
		return nil, fmt.Errorf("sign-in is not configured: set %s", config.EnvAuthURL)
	}
	return auth.NewClient(cfg.AuthURL), nil
}

func runLogin(email string) error {
	client, err := authClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		email, err = promptLine(reader, "Email: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	session, err := client.Login(context.Background(), email, password)
	if err != nil {
		return fmt.Errorf("%s", apierrors.FriendlyAuthMessage(err))
	}
	return finishSignIn(session)
}

func runGoogleLogin(idToken string) error {
	client, err := authClient()
	if err != nil {
		return err
	}
	session, err := client.LoginWithGoogle(context.Background(), idToken)
	if err != nil {
		return fmt.Errorf("%s", apierrors.FriendlyAuthMessage(err))
	}
	return finishSignIn(session)
}

func runRegister() error {
	client, err := authClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	first, err := promptLine(reader, "First name: ")
	if err != nil {
		return err
	}
	last, err := promptLine(reader, "Last name: ")
	if err != nil {
		return err
	}
	email, err := promptLine(reader, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	session, err := client.Register(context.Background(), first, last, email, password)
	if err != nil {
		return fmt.Errorf("%s", apierrors.FriendlyAuthMessage(err))
	}
	return finishSignIn(session)
}

func runLogout(purge bool) error {
	path, err := config.GetSessionPath()
	if err != nil {
		return err
	}
	if purge {
		if err := purgeRemoteChats(path); err != nil {
			return err
		}
	}
	if err := auth.ClearSession(path); err != nil {
		return err
	}
	fmt.Println("Signed out. Chats will be kept locally.")
	return nil
}

// purgeRemoteChats tombstones every synced chat before the session goes away.
func purgeRemoteChats(sessionPath string) error {
	session, err := auth.LoadSession(sessionPath)
	if err != nil {
		return fmt.Errorf("cannot purge synced chats: %w", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.RedisURL == "" {
		return fmt.Errorf("cannot purge synced chats: set %s", config.EnvRedisURL)
	}
	remote, err := store.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer remote.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := remote.MarkAllDeleted(ctx, session.UserID); err != nil {
		return err
	}
	fmt.Println("Synced chats deleted.")
	return nil
}

func finishSignIn(session *auth.Session) error {
	path, err := config.GetSessionPath()
	if err != nil {
		return err
	}
	if err := auth.SaveSession(path, session); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s.\n", session.DisplayName())
	fmt.Println("Your guest chats will move to this account the next time you open a chat.")
	return nil
}

func promptLine(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
