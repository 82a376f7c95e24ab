package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// Version is injected by build scripts via -ldflags "-X main.Version=..."
var Version = "dev"

var configPath string

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	app := cli.NewApp()
	app.Name = "taiexbt"
	app.Version = Version
	app.EnableBashCompletion = true
	app.Usage = "TAIEX moving-average leverage backtester"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "配置文件路径(YAML格式)，默认优先使用 ./config.yaml",
			Destination: &configPath,
		},
	}
	app.Commands = []*cli.Command{
		serveCommand,
		runCommand,
		fetchCommand,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}
