package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "deepseek-gql v%s\n", Version)
		fmt.Fprintf(os.Stderr, "GraphQL endpoint forwarding prompts to the DeepSeek chat-completion API\n\n")
		fmt.Fprintf(os.Stderr, "Usage: deepseek-gql [options]\n\n")
		fmt.Fprintf(os.Stderr, "  --config <path>        YAML config path (default: built-in defaults)\n")
		fmt.Fprintf(os.Stderr, "  --listen <addr>        Override server.listen\n")
		fmt.Fprintf(os.Stderr, "  --env-file <path>      Load environment variables from a dotenv file\n")
		fmt.Fprintf(os.Stderr, "  --log-format <format>  auto, text or json (default: from config)\n")
		fmt.Fprintf(os.Stderr, "  --log-level <level>    debug, info, warn, error (default: from config)\n")
		fmt.Fprintf(os.Stderr, "  --version              Show version information\n\n")
		fmt.Fprintf(os.Stderr, "Environment:\n")
		fmt.Fprintf(os.Stderr, "  DEEPSEEK_API_KEY       Upstream bearer credential (required)\n")
	}
}

func showVersion() {
	fmt.Printf("deepseek-gql v%s\n", Version)
}

// loadEnvFile applies a dotenv file without overriding variables that are
// already set in the process environment.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
