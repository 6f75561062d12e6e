// Package casefile holds the seed CLI commands for loading and exporting
// case documents.
package casefile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "casefile",
	Title: "Case-file operations",
}

func init() {
	Seed.Flags().String("sqlite-url", "./whodunit.sqlite", "SQLite URL")
	Export.Flags().String("sqlite-url", "./whodunit.sqlite", "SQLite URL")
}

var Seed = &cobra.Command{
	Use:     "seed [case.json]",
	GroupID: "casefile",
	Short:   "Seed a case",
	Long:    `Loads a case document into the database, replacing any previous content of that case.`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var document io.Reader
		if args[0] == "-" {
			document = os.Stdin
		} else {
			file, err := os.Open(args[0])
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "open case document: %v\n", err)
				return
			}
			defer func(file *os.File) {
				_ = file.Close()
			}(file)
			document = file
		}

		var seed models.CaseSeed
		if err := json.NewDecoder(document).Decode(&seed); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "decode case document: %v\n", err)
			return
		}
		if seed.Case.ID == "" {
			_, _ = fmt.Fprintln(os.Stderr, "case document is missing case.id")
			return
		}

		repo, cleanup, err := openRepository(ctx, cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		defer cleanup()

		if err := repo.Seed(ctx, seed); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "seed case: %v\n", err)
			return
		}

		fmt.Printf("Seeded case %s with %d suspects\n", seed.Case.ID, len(seed.Suspects))
	},
}

var Export = &cobra.Command{
	Use:     "export [case-id]",
	GroupID: "casefile",
	Short:   "Export a case",
	Long:    `Prints a case as a seed document that can be edited and loaded back.`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		caseID := args[0]

		repo, cleanup, err := openRepository(ctx, cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		defer cleanup()

		var seed models.CaseSeed
		c, err := repo.Case(ctx, caseID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read case: %v\n", err)
			return
		}
		seed.Case = *c
		if seed.Suspects, err = repo.Suspects(ctx, caseID); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read suspects: %v\n", err)
			return
		}
		if seed.Clues, err = repo.Clues(ctx, caseID); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read clues: %v\n", err)
			return
		}
		if seed.Evidence, err = repo.Evidence(ctx, caseID); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read evidence: %v\n", err)
			return
		}
		if seed.Timeline, err = repo.Timeline(ctx, caseID); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read timeline: %v\n", err)
			return
		}
		if seed.Alibis, err = repo.Alibis(ctx, caseID); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read alibis: %v\n", err)
			return
		}
		if seed.Credibility, err = repo.Credibility(ctx, caseID); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read credibility: %v\n", err)
			return
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(seed); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "encode case document: %v\n", err)
			return
		}
	},
}

func openRepository(ctx context.Context, cmd *cobra.Command) (*repositories.CaseRepository, func(), error) {
	sqliteURL, err := cmd.Flags().GetString("sqlite-url")
	if err != nil {
		return nil, nil, err
	}
	dbs, err := sqlite.NewDatabase(ctx, sqliteURL)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cleanup := func() {
		_ = dbs.Close()
	}
	return repositories.NewCaseRepository(dbs, logger), cleanup, nil
}
