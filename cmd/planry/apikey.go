package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var apikeyValue string

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "API key commands",
}

var apikeyHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Hash an API key for api.api_key_hash",
	Long: `Read an API key and print its bcrypt hash. Put the hash in api.api_key_hash
(or PLANRY_API_KEY_HASH) so the plain key never sits in the configuration.`,
	RunE: runAPIKeyHash,
}

func init() {
	apikeyHashCmd.Flags().StringVar(&apikeyValue, "key", "", "API key (prompted when omitted)")

	apikeyCmd.AddCommand(apikeyHashCmd)
	rootCmd.AddCommand(apikeyCmd)
}

func runAPIKeyHash(cmd *cobra.Command, args []string) error {
	key := apikeyValue
	if key == "" {
		fmt.Fprint(os.Stderr, "Enter API key: ")
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		fmt.Fprintln(os.Stderr)

		fmt.Fprint(os.Stderr, "Confirm API key: ")
		keyBytes2, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		fmt.Fprintln(os.Stderr)

		if string(keyBytes) != string(keyBytes2) {
			return fmt.Errorf("keys do not match")
		}
		key = string(keyBytes)
	}

	if len(key) < 16 {
		return fmt.Errorf("API key must be at least 16 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash API key: %w", err)
	}

	fmt.Println(string(hash))
	return nil
}
