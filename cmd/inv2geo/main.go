// inv2geo converts the inscription inventory spreadsheet into a gazetteer of
// the places it mentions.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andreiashu/gazetteer/cmd/inv2geo/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
