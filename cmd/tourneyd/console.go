package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"tourney/internal/orchestrator"
)

// runConsole attaches an interactive pause/resume/stop/status REPL to a
// running orchestrator. It returns once the console's input stream closes.
func runConsole(orch *orchestrator.Orchestrator) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tourney> ",
		HistoryFile:     ".tourneyd_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer rl.Close()

	fmt.Println("tourneyd operator console. Type 'help' for commands.")
	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return
		}
		if err != nil {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "help":
			fmt.Println("commands: status, standings, pause, resume, stop, exit")
		case "status":
			printConsoleStatus(orch)
		case "standings":
			printConsoleStandings(orch)
		case "pause":
			orch.Control().Pause()
			fmt.Println("paused")
		case "resume":
			orch.Control().Resume()
			fmt.Println("resumed")
		case "stop":
			orch.Control().RequestStop()
			fmt.Println("stop requested")
		case "exit", "quit":
			return
		default:
			fmt.Printf("unknown command: %s\n", line)
		}
	}
}

func printConsoleStatus(orch *orchestrator.Orchestrator) {
	s := orch.StateSnapshot()
	fmt.Printf("mode=%s round=%d/%d games=%d/%d paused=%v stopped=%v last_end=%s\n",
		s.Mode, s.CurrentRound, s.TotalRounds, s.GamesCompleted, s.TotalGames, s.Paused, s.Stopped, s.LastGameEndTime)
}

func printConsoleStandings(orch *orchestrator.Orchestrator) {
	for i, row := range orch.StandingsSnapshot() {
		fmt.Printf("%2d  %-20s  games=%-4d pts=%.1f\n", i, row.Name, row.Games, row.Points)
	}
}
