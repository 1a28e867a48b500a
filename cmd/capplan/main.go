package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/interfaces/cli/commands"
)

// Exit codes, one per error class
const (
	exitOK                 = 0
	exitFailure            = 1
	exitDataValidation     = 2
	exitModelConstruction  = 3
	exitSolverUnavailable  = 4
	exitSolverNonOptimal   = 5
	exitExtractionMismatch = 6
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := commands.NewApp()
	defer app.Close()

	return commands.NewRootCmd(app).ExecuteContext(ctx)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, entities.ErrDataValidation):
		return exitDataValidation
	case errors.Is(err, entities.ErrModelConstruction):
		return exitModelConstruction
	case errors.Is(err, entities.ErrSolverUnavailable):
		return exitSolverUnavailable
	case errors.Is(err, entities.ErrSolverNonOptimal):
		return exitSolverNonOptimal
	case errors.Is(err, entities.ErrExtractionInconsistency):
		return exitExtractionMismatch
	default:
		return exitFailure
	}
}
