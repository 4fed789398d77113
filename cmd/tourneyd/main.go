// Command tourneyd runs a multi-engine tournament: round-robin or Swiss,
// checkpointed and resumable, with an optional HTTP control surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"tourney/internal/archive"
	"tourney/internal/broadcast"
	"tourney/internal/config"
	"tourney/internal/control"
	"tourney/internal/logging"
	"tourney/internal/orchestrator"
)

func main() {
	root := &cli.Command{
		Name:  "tourneyd",
		Usage: "run multi-engine chess tournaments",
		Commands: []*cli.Command{
			runCommand(),
			resumeCommand(),
			statusCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "start a fresh tournament run",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true, Usage: "path to the TOML runner config"},
			&cli.StringFlag{Name: "env", Value: ".env", Usage: "path to an optional .env file"},
			&cli.BoolFlag{Name: "resume", Usage: "resume from the configured checkpoint path if present"},
			&cli.BoolFlag{Name: "console", Usage: "attach an interactive operator console"},
			&cli.StringFlag{Name: "pid-file", Usage: "if set, refuse to start while this file is locked by another instance"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTournament(ctx, cmd.String("config"), cmd.String("env"), cmd.Bool("resume"), cmd.Bool("console"), cmd.String("pid-file"))
		},
	}
}

func resumeCommand() *cli.Command {
	return &cli.Command{
		Name:  "resume",
		Usage: "resume a tournament run from its checkpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true},
			&cli.StringFlag{Name: "env", Value: ".env"},
			&cli.BoolFlag{Name: "console"},
			&cli.StringFlag{Name: "pid-file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTournament(ctx, cmd.String("config"), cmd.String("env"), true, cmd.Bool("console"), cmd.String("pid-file"))
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "print the current checkpoint's progress summary",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return printStatus(cmd.String("config"))
		},
	}
}

func runTournament(ctx context.Context, configPath, envPath string, resume, withConsole bool, pidFilePath string) error {
	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	log := logging.New(cfg.LogLevel, cfg.LogJSON).With().Str("run_id", runID).Logger()

	if pidFilePath != "" {
		cleanup, err := managePIDFile(pidFilePath)
		if err != nil {
			return fmt.Errorf("tourneyd: %w", err)
		}
		defer cleanup()
	}

	orchCfg, err := cfg.ToOrchestratorConfig()
	if err != nil {
		return err
	}
	orchCfg.RunID = runID

	var archiveSink orchestrator.ArchiveSink
	if cfg.ArchivePath != "" {
		store, err := archive.Open(cfg.ArchivePath, log)
		if err != nil {
			return fmt.Errorf("tourneyd: %w", err)
		}
		defer store.Close()
		archiveSink = store
	}

	var broadcastSink orchestrator.BroadcastSink
	if cfg.BroadcastURL != "" {
		pub, err := broadcast.Connect(cfg.BroadcastURL, cfg.BroadcastSubject, log)
		if err != nil {
			return fmt.Errorf("tourneyd: %w", err)
		}
		defer pub.Close()
		broadcastSink = pub
	}

	orch := orchestrator.New(orchCfg, log, archiveSink, broadcastSink)

	if resume {
		if _, statErr := os.Stat(cfg.CheckpointPath); statErr == nil {
			if err := orch.Resume(cfg.CheckpointPath); err != nil {
				return fmt.Errorf("tourneyd: %w", err)
			}
			log.Info().Msg("resumed from checkpoint")
		}
	}

	var controlServer *control.Server
	if cfg.ControlAddr != "" {
		controlServer = control.New(orch, cfg.OperatorToken)
		go func() {
			if err := controlServer.Listen(cfg.ControlAddr); err != nil {
				log.Warn().Err(err).Msg("control server stopped")
			}
		}()
	}

	if withConsole && term.IsTerminal(int(os.Stdin.Fd())) {
		go runConsole(orch)
	} else if withConsole {
		log.Warn().Msg("console requested but stdin is not a terminal, skipping")
	}

	return orch.Run(ctx)
}

func printStatus(configPath string) error {
	cfg, err := config.Load(configPath, "")
	if err != nil {
		return err
	}
	fmt.Printf("checkpoint: %s\n", cfg.CheckpointPath)
	fmt.Printf("metrics:    %s\n", cfg.MetricsPath)
	return nil
}
