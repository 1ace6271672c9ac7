// Package main - утилита ecoctl для ведения эко-энзима из терминала.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"serotonyl.ru/eco-bot/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.Message(err))
		stop()
		os.Exit(1)
	}
}
