package main

import (
	"os"

	"timesheet-service/internal/cli"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	if err := cli.Execute(os.Args[1:], os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("timesheet-service failed")
	}
}
