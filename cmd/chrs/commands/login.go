package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fnndsc/cube-client/pkg/cubeclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		address  string
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to CUBE",
		Long:  "Authenticate with a CUBE API and save the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				address = viper.GetString("address")
			}

			if address == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("CUBE address: ")
				address, _ = reader.ReadString('\n')
				address = strings.TrimSpace(address)
			}

			if address == "" {
				return ErrAddressRequired
			}

			address, err := cubeclient.NormalizeAddress(address)
			if err != nil {
				return err
			}

			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if password == "" {
				fmt.Print("Password: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(bytePassword)

				fmt.Println()
			}

			token, err := cubeclient.Authenticate(cmd.Context(), address, username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			config := loadConfig()
			config.Address = address
			config.Username = username
			config.Token = token

			err = saveConfig(config)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in to %s as %s\n", address, username)

			return nil
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "CUBE API address")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted if not given)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from CUBE",
		Long:  "Discard the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token == "" {
				fmt.Println("Not logged in")

				return nil
			}

			config.Token = ""

			err := saveConfig(config)
			if err != nil {
				return err
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}
