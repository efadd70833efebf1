package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rburns/revcov/internal/cli"
)

func main() {
	// A missing .env is not an error; the environment still applies.
	_ = godotenv.Load()

	os.Exit(cli.Run())
}
