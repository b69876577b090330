package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxzi/planry/internal/plan"
)

var (
	initOutput   string
	initAPIKey   string
	initHashKey  bool
	initDataDir  string
	initDuration int
	initListen   string
	initExample  string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize Planry configuration",
	Long: `Interactive wizard to create a Planry configuration file.

Examples:
  # Interactive mode - prompts for missing values
  planry init

  # Non-interactive, storing only the bcrypt hash of the generated key
  planry init --duration 6 --hash-key -o planry.yaml

  # Also write a sample plan document to try "planry checklist" on
  planry init --example plan.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "Output configuration file path")
	initCmd.Flags().StringVar(&initAPIKey, "api-key", "", "API key (auto-generated if not provided)")
	initCmd.Flags().BoolVar(&initHashKey, "hash-key", false, "Store the bcrypt hash of the API key instead of the key")
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "/var/lib/planry", "Data directory for the checklist archive")
	initCmd.Flags().IntVar(&initDuration, "duration", 0, "Default campaign duration in weeks (4, 6 or 8)")
	initCmd.Flags().StringVar(&initListen, "listen", ":8080", "API listen address")
	initCmd.Flags().StringVar(&initExample, "example", "", "Also write a sample plan document to this path")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Planry Configuration Wizard")
	fmt.Println("===========================")
	fmt.Println()

	if initDuration == 0 {
		answer := prompt(reader, "Default campaign duration in weeks (4, 6 or 8)", strconv.Itoa(plan.DefaultDuration))
		n, err := strconv.Atoi(answer)
		if err != nil {
			return fmt.Errorf("duration must be a number: %q", answer)
		}
		initDuration = n
	}
	if !plan.ValidDuration(initDuration) {
		return fmt.Errorf("duration must be 4, 6 or 8 weeks, got %d", initDuration)
	}

	initDataDir = prompt(reader, "Data directory", initDataDir)

	if initAPIKey == "" {
		initAPIKey = generateRandomString(32)
		fmt.Printf("  Generated API key: %s\n", initAPIKey)
	}

	if !initForce {
		for _, path := range []string{initOutput, initExample} {
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
	}

	fmt.Println()
	fmt.Println("Creating configuration...")

	if err := os.MkdirAll(initDataDir, 0755); err != nil {
		fmt.Printf("  Warning: Could not create data directory: %v\n", err)
	}

	keyLine := fmt.Sprintf("api_key: %q", initAPIKey)
	if initHashKey {
		hash, err := bcrypt.GenerateFromPassword([]byte(initAPIKey), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash API key: %w", err)
		}
		keyLine = fmt.Sprintf("api_key_hash: %q", string(hash))
	}

	if err := os.WriteFile(initOutput, []byte(generateConfig(keyLine)), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Printf("  Configuration saved to: %s\n", initOutput)

	if initExample != "" {
		if err := os.WriteFile(initExample, []byte(generateExamplePlan(initDuration)), 0644); err != nil {
			return fmt.Errorf("failed to write example plan: %w", err)
		}
		fmt.Printf("  Example plan saved to: %s\n", initExample)
	}
	fmt.Println()

	printNextSteps()
	return nil
}

func prompt(reader *bufio.Reader, question, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", question, defaultValue)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}

func generateRandomString(length int) string {
	bytes := make([]byte, length/2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateConfig(keyLine string) string {
	return fmt.Sprintf(`# Planry configuration
# Every value can be overridden with PLANRY_* environment variables,
# e.g. PLANRY_API_LISTEN_ADDR or PLANRY_PLANNER_DEFAULT_DURATION.

api:
  listen_addr: %q
  %s
  # allowed_ips: ["127.0.0.1", "10.0.0.0/8"]
  # cors_origins: ["http://localhost:5173"]
  # rate_limit:
  #   per_ip:
  #     requests_per_minute: 120
  #   per_api_key:
  #     requests_per_hour: 5000

planner:
  default_duration: %d
  # -1s keeps sessions until deleted, -1 lifts the session cap
  session_ttl: 24h
  max_sessions: 1000
  cleanup_interval: 10m

storage:
  path: %q

logging:
  level: info
  format: json

metrics:
  enabled: false
  listen_addr: ":9090"
  path: "/metrics"
`, initListen, keyLine, initDuration, filepath.Join(initDataDir, "archive.db"))
}

func generateExamplePlan(weeks int) string {
	return fmt.Sprintf(`campaign:
  name: Summer Wellness Push
  duration_weeks: %d
  main_offer: Summer Challenge
  supporting_content:
    - title: Hydration Tips
      brand: WBI
      type: Blog
    - title: Morning Stretch Routine
      brand: COW
      type: Video
weeks:
  - week: 1
    cow:
      - type: Announcement
        promotes: Summer Challenge
    wbi:
      - type: Announcement
        promotes: Summer Challenge
  - week: 2
    wbi:
      - type: Blog Promo
        promotes: Hydration Tips
  - week: %d
    cow:
      - type: Last Chance
        promotes: Summer Challenge
`, weeks, weeks)
}

func printNextSteps() {
	fmt.Println("Next Steps")
	fmt.Println("==========")
	fmt.Println()
	fmt.Println("1. Start the server:")
	fmt.Printf("   planry serve -c %s\n", initOutput)
	fmt.Println()
	fmt.Println("2. Create a planning session:")
	fmt.Printf("   curl -X POST http://localhost%s/api/v1/sessions \\\n", initListen)
	fmt.Printf("     -H \"Authorization: Bearer %s\"\n", initAPIKey)
	fmt.Println()
	if initExample != "" {
		fmt.Println("3. Print the checklist of the example plan:")
		fmt.Printf("   planry checklist -f %s\n", initExample)
		fmt.Println()
	}
	fmt.Println("Credentials")
	fmt.Println("-----------")
	fmt.Printf("API Key: %s\n", initAPIKey)
	fmt.Println()
}
