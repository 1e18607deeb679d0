package main

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/Luismorlan/ledger_in_go/layout"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/Luismorlan/ledger_in_go/wallet"
	"github.com/jroimartin/gocui"
	cli "gopkg.in/urfave/cli.v1"
)

//go:embed usage.txt
var usage string

func main() {
	app := cli.NewApp()
	app.Name = "wallet"
	app.Usage = "sign and submit transfers to a full node"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "key_path", Value: "/tmp/mykey.hex", Usage: "file path for your secp256k1 private keys, one per line, created if missing"},
		cli.StringFlag{Name: "host", Value: "", Usage: "full node host to connect on start"},
		cli.StringFlag{Name: "port", Value: "10000", Usage: "full node port"},
		cli.BoolFlag{Name: "debug_mode", Usage: "Using debug mode will disable fancy GUI."},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	debugMode := c.Bool("debug_mode")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Lines typed before the wallet is loaded are refused by the handler.
	h := &handler{ctx: ctx}
	var g *gocui.Gui
	var out io.Writer = os.Stdout
	if !debugMode {
		var err error
		if g, err = layout.CreateGui(h.HandleLine, usage); err != nil {
			return err
		}
		defer g.Close()
		out = layout.LogWriter(g)
	}
	logger := utils.NewLogger(out, debugMode)

	w, err := wallet.NewWallet(c.String("key_path"), logger)
	if err != nil {
		return err
	}
	defer w.Close()
	h.w = w
	w.Log("wallet loaded", "pk", w.GetPublicKey())

	if host := c.String("host"); host != "" {
		if err := w.SetFullNodeConnection(host, c.String("port")); err != nil {
			logger.Error("failed to connect", "err", err)
		}
	}

	if !debugMode {
		if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
			return err
		}
		return nil
	}

	fmt.Print(usage)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := h.HandleLine(scanner.Text()); err != nil {
			logger.Error("command failed", "err", err)
		}
	}
}
