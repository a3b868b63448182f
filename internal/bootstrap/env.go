package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv loads a .env file when one is present. Values already set in the
// process environment win.
func Loadenv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
