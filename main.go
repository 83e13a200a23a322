package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/aexpr/cli"
	"github.com/ardnew/aexpr/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error("run failed", slog.Any("error", err)) // errors log via LogValue
		os.Exit(1)
	}
}
