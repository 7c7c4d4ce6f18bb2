package main

import (
	"recipescrape/cmd/recipescrape/commands"
	"recipescrape/lib/util/serviceutil"

	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()
	commands.ExecuteContext(serviceutil.SignalContext())
}
