package main

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Luismorlan/ledger_in_go/config"
	"github.com/Luismorlan/ledger_in_go/full_node"
	"github.com/Luismorlan/ledger_in_go/layout"
	"github.com/Luismorlan/ledger_in_go/service"
	"github.com/Luismorlan/ledger_in_go/utils"
	"github.com/jroimartin/gocui"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	cli "gopkg.in/urfave/cli.v1"
)

//go:embed usage.txt
var usage string

func main() {
	app := cli.NewApp()
	app.Name = "full_node"
	app.Usage = "single node proof-of-work ledger"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "port", Value: "10000", Usage: "port to listen to wallets"},
		cli.StringFlag{Name: "config_path", Value: "full_node/cmd/config.yaml", Usage: "path to full node config, defaults are used when empty"},
		cli.StringFlag{Name: "state_path", Value: "/tmp/ledger.json", Usage: "ledger file, loaded on start and written after each block"},
		cli.BoolFlag{Name: "debug_mode", Usage: "Using debug mode will disable fancy GUI."},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.DefaultAppConfig()
	if p := c.String("config_path"); p != "" {
		var err error
		if cfg, err = config.ParseAppConfig(p); err != nil {
			return err
		}
	}
	debugMode := c.Bool("debug_mode")

	var h *handler
	submit := func(line string) error {
		return h.HandleLine(line)
	}

	var g *gocui.Gui
	var out io.Writer = os.Stdout
	if !debugMode {
		var err error
		if g, err = layout.CreateGui(submit, usage); err != nil {
			return err
		}
		defer g.Close()
		out = layout.LogWriter(g)
	}
	logger := utils.NewLogger(out, debugMode)

	node, err := loadNode(cfg, c.String("state_path"), logger)
	if err != nil {
		return err
	}
	h = newHandler(node, logger, c.String("state_path"))
	logger.Info("full node created", "uuid", node.GetUUID(), "height", node.GetHeight(), "difficulty", node.GetDifficulty())

	lis, err := net.Listen("tcp", ":"+c.String("port"))
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	grpcServer := grpc.NewServer()
	service.RegisterLedgerServiceServer(grpcServer, full_node.NewFullNodeServer(node, logger))
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", "err", err)
		}
	}()
	defer grpcServer.GracefulStop()
	logger.Info("listening", "port", c.String("port"))

	if !debugMode {
		if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
			return err
		}
		return h.save()
	}

	fmt.Print(usage)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	lines := make(chan string)
	go readLines(os.Stdin, lines)
	for {
		select {
		case <-sig:
			return h.save()
		case line, ok := <-lines:
			if !ok {
				return h.save()
			}
			if err := h.HandleLine(line); err != nil {
				logger.Error("command failed", "err", err)
			}
		}
	}
}

// loadNode restores the ledger from statePath when it exists, otherwise starts from genesis.
func loadNode(cfg config.AppConfig, statePath string, logger *slog.Logger) (*full_node.FullNode, error) {
	if statePath == "" {
		return full_node.NewFullNode(cfg, logger)
	}
	l, err := utils.ReadLedgerFromFile(statePath)
	if errors.Is(err, fs.ErrNotExist) {
		return full_node.NewFullNode(cfg, logger)
	}
	if err != nil {
		return nil, err
	}
	node, err := full_node.NewFullNodeFromLedger(cfg, l, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded state", "path", statePath, "tip", utils.ShortenString(l.GetLatestBlock().Hash))
	if !node.IsChainValid() {
		logger.Warn("restored chain is invalid", "path", statePath)
	}
	return node, nil
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		lines <- scanner.Text()
	}
}
