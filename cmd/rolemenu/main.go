package main

import (
	"os"

	"github.com/small-frappuccino/rolemenu/pkg/app"
	"github.com/small-frappuccino/rolemenu/pkg/log"
)

func main() {
	if err := app.Run("rolemenu", "ROLEMENU_BOT_TOKEN"); err != nil {
		log.ErrorLogger().Error("fatal", "err", err)
		os.Exit(1)
	}
}
