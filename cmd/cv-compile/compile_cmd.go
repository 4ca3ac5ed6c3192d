package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/vitaworks/vitaworks/modules/cv/infrastructure/persistence"
	"github.com/vitaworks/vitaworks/modules/cv/infrastructure/query"
	"github.com/vitaworks/vitaworks/modules/cv/services"
	"github.com/vitaworks/vitaworks/pkg/configuration"
	"github.com/vitaworks/vitaworks/pkg/eventbus"
)

type compileOutput struct {
	Command    string   `json:"command"`
	TemplateID string   `json:"template_id"`
	Requested  int      `json:"requested"`
	Compiled   int      `json:"compiled"`
	Failures   []string `json:"failures,omitempty"`
	OutputFile string   `json:"output_file"`
	DurationMS int64    `json:"duration_ms"`
}

func newCompileCmd() *cobra.Command {
	var (
		templateID string
		userIDs    []string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile CVs for a list of users and write the HTML to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			tid, err := uuid.Parse(templateID)
			if err != nil {
				return fmt.Errorf("invalid --template: %w", err)
			}
			if len(userIDs) == 0 {
				return fmt.Errorf("--users is required")
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			conf := configuration.Use()
			templates := persistence.NewTemplateRepository(pool)
			svc := services.NewCVService(
				persistence.NewSectionRepository(pool),
				persistence.NewRecordRepository(pool),
				templates,
				persistence.NewProfileRepository(pool),
				query.NewExprExecutor(),
				eventbus.NewEventPublisher(conf.Logger()),
				conf.Compilation.AsOfYear,
			)

			start := time.Now()
			result, err := svc.CompileBatch(cmd.Context(), tid, userIDs)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputFile, []byte(result.HTML), 0o644); err != nil {
				return err
			}

			out := compileOutput{
				Command:    "compile",
				TemplateID: tid.String(),
				Requested:  len(userIDs),
				Compiled:   result.Compiled,
				OutputFile: outputFile,
				DurationMS: time.Since(start).Milliseconds(),
			}
			for _, failure := range result.Failures {
				out.Failures = append(out.Failures, failure.String())
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&templateID, "template", "", "Template UUID (required)")
	cmd.Flags().StringSliceVar(&userIDs, "users", nil, "User ids to compile (required)")
	cmd.Flags().StringVar(&outputFile, "output", "cv.html", "Output HTML file")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	return pgxpool.New(ctx, configuration.Use().Database.Opts)
}
