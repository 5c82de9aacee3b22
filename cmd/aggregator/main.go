package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Tokens and API keys may live in a local .env file; missing is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
