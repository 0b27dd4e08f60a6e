package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/lostlibrary/internal/client/cli"
	"github.com/iudanet/lostlibrary/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := cli.NewRootCommand(cli.OpenWith(os.Stderr), iocli.NewStdio(), os.LookupEnv, version())
	code := cli.Execute(ctx, root)

	stop()
	os.Exit(code)
}

func version() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)
}
