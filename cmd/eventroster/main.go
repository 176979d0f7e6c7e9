package main

import (
	"context"
	"log"
	_ "time/tzdata"

	"github.com/dalemusser/eventroster/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
