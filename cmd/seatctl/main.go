package main

import (
	"github.com/joho/godotenv"

	"github.com/iliyamo/flight-seat-booking/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
