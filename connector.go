package configurator

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/datazip-inc/olake-configurator/protocol"
	"github.com/datazip-inc/olake-configurator/utils/logger"
	"github.com/datazip-inc/olake-configurator/utils/safego"
)

// Run executes the configurator CLI; an interrupt cancels the in-flight discovery.
func Run() {
	defer safego.Recovery(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := protocol.CreateRootCommand().ExecuteContext(ctx); err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
