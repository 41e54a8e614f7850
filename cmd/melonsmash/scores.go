package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/storage"
)

var (
	flagJSON  bool
	flagClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show the leaderboard for a mode",
	Long: `Display the top 10 rounds and aggregate stats for a mode.
The mode defaults to "melon".

Examples:
  melonsmash scores
  melonsmash scores melon_practice
  melonsmash scores --json
  melonsmash scores melon_practice --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every recorded round of the mode")
}

func runScores(_ *cobra.Command, args []string) error {
	gameID := "melon"
	if len(args) == 1 {
		gameID = args[0]
	}

	// Check if mode exists
	info, ok := registry.Lookup(gameID)
	if !ok {
		return fmt.Errorf("unknown mode %q (run 'melonsmash list' to see available modes)", gameID)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("cannot open scores database: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRounds(gameID); err != nil {
			return err
		}
		fmt.Printf("Cleared all rounds of %s.\n", info.Title)
		return nil
	}

	rounds, err := store.TopRounds(gameID, 10)
	if err != nil {
		return fmt.Errorf("cannot read scores: %w", err)
	}
	stats, err := store.GetGameStats(gameID)
	if err != nil {
		return fmt.Errorf("cannot read stats: %w", err)
	}

	if flagJSON {
		if rounds == nil {
			rounds = []storage.Round{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"mode":   gameID,
			"rounds": rounds,
			"stats":  stats,
		})
	}

	fmt.Printf("High Scores - %s\n", info.Title)
	fmt.Println()

	if len(rounds) == 0 {
		fmt.Println("No rounds recorded yet.")
		fmt.Println()
		fmt.Println("Play 'melonsmash play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-16s  %-6s  %s\n", "Rank", "Player", "Melons", "Date")
	fmt.Printf("  %-4s  %-16s  %-6s  %s\n", "----", "------", "------", "----")
	for i, r := range rounds {
		fmt.Printf("  %-4d  %-16s  %-6d  %s\n", i+1, truncate(r.Player, 16), r.Score, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Printf("Best: %d   Rounds: %d   Average: %.1f   Total smashed: %d\n",
		stats.HighScore, stats.Rounds, stats.AvgScore, stats.TotalScore)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
