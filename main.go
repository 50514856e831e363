package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goforj/godump"
	"github.com/urfave/cli/v3"

	"sshgate/internal/config"
	"sshgate/internal/execution"
	"sshgate/internal/gateway"
)

func main() {
	cmd := &cli.Command{
		Name:  "sshgate",
		Usage: "expose a managed SSH connection as MCP tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file (SSH_* environment variables override it)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "dump intermediate results",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the MCP tool surface over stdio",
				Action: runServe,
			},
			{
				Name:   "check",
				Usage:  "run a connection diagnostic and exit",
				Action: runCheck,
			},
			{
				Name:      "exec",
				Usage:     "run a single command on the target host",
				ArgsUsage: "<command>",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Value: execution.DefaultTimeout,
						Usage: "command timeout",
					},
					&cli.StringFlag{
						Name:  "input",
						Usage: "data written to the command's stdin",
					},
					&cli.BoolFlag{
						Name:  "pty",
						Usage: "request a PTY",
					},
				},
				Action: runExec,
			},
			{
				Name:      "upload",
				Usage:     "copy a local file to the target host",
				ArgsUsage: "<local_path> <remote_path>",
				Action:    runUpload,
			},
			{
				Name:      "download",
				Usage:     "copy a file from the target host",
				ArgsUsage: "<remote_path> <local_path>",
				Action:    runDownload,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newClient builds the execution client from the effective configuration.
func newClient(cmd *cli.Command) (*config.Config, execution.Client, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if cfg.IsLocal() {
		return cfg, execution.NewLocalClient(), nil
	}
	mgr, err := execution.NewManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, mgr, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, client, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	logger := gateway.NewLogger(cfg)
	return gateway.New(cfg, client, logger).ServeStdio()
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, client, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	status := client.CheckStatus(ctx)
	if cmd.Bool("debug") {
		godump.Dump(status)
	}
	if !status.Connected {
		return cli.Exit(fmt.Sprintf("connection check failed: %s", status.Error), 1)
	}
	fmt.Printf("connected to %s@%s:%d\n", cfg.Username, cfg.Host, cfg.Port)
	if status.TestOutput != "" {
		fmt.Println(status.TestOutput)
	}
	return nil
}

func runExec(ctx context.Context, cmd *cli.Command) error {
	command := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(command) == "" {
		return cli.Exit("no command given", 2)
	}

	_, client, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	result := client.Run(ctx, execution.CommandRequest{
		Command: command,
		Input:   cmd.String("input"),
		Timeout: cmd.Duration("timeout"),
		UsePTY:  cmd.Bool("pty"),
	})
	if cmd.Bool("debug") {
		godump.Dump(result)
	}

	fmt.Print(result.Stdout)
	fmt.Fprint(os.Stderr, result.Stderr)
	if result.Error != "" {
		return cli.Exit(result.Error, 1)
	}
	if result.ExitCode != nil && *result.ExitCode != 0 {
		return cli.Exit("", *result.ExitCode)
	}
	return nil
}

func runUpload(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return cli.Exit("usage: sshgate upload <local_path> <remote_path>", 2)
	}

	_, client, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	result := client.Upload(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
	if cmd.Bool("debug") {
		godump.Dump(result)
	}
	if !result.Success {
		return cli.Exit(result.Error, 1)
	}
	fmt.Printf("uploaded %s -> %s (%d bytes)\n", result.LocalPath, result.RemotePath, result.FileSize)
	return nil
}

func runDownload(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return cli.Exit("usage: sshgate download <remote_path> <local_path>", 2)
	}

	_, client, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	result := client.Download(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
	if cmd.Bool("debug") {
		godump.Dump(result)
	}
	if !result.Success {
		return cli.Exit(result.Error, 1)
	}
	fmt.Printf("downloaded %s -> %s (%d bytes)\n", result.RemotePath, result.LocalPath, result.FileSize)
	return nil
}
