package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mpmf/NexxtTask/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
