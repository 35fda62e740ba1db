package main

import (
	"context"
	"os"

	"github.com/yigit/orghub/cmd/orghubctl/commands"
	"github.com/yigit/orghub/internal/pkg/logger"
)

func main() {
	if err := commands.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
