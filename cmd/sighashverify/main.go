package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var cfg *config

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[sighashverify] %v\n", err)
	os.Exit(1)
}

func main() {
	loadedConfig, remainingArgs, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	cfg = loadedConfig

	app := cli.NewApp()
	app.Name = "sighashverify"
	app.Version = "0.1.0"
	app.Usage = "verify and inspect open-transaction sighash lock signatures"
	app.Commands = []cli.Command{
		verifyCommand,
		digestCommand,
		batchVerifyCommand,
	}

	argv := append([]string{os.Args[0]}, remainingArgs...)
	if err := app.Run(argv); err != nil {
		fatal(err)
	}
}
