package main

import (
	"context"
	"flag"
	"log"

	"github.com/mkarpenko/codepad/internal/cli"
)

func main() {

	serverAddr := flag.String("s", "http://localhost:8080", "server address")
	flag.Parse()

	ctx := context.Background()
	app := cli.NewApp(*serverAddr)

	if err := app.Run(ctx, flag.Args()); err != nil {
		log.Fatalf("%v", err)
	}
}
