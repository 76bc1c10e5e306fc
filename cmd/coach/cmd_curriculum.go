package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/exam-coach/internal/curriculum"
	"github.com/p-n-ai/exam-coach/internal/platform/config"
)

func newCurriculumCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curriculum",
		Short: "Inspect and build curriculum documents",
	}
	cmd.AddCommand(newCurriculumValidateCmd(cfg), newCurriculumExtractCmd())
	return cmd
}

func newCurriculumValidateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a curriculum document and print its subjects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Paths.CurriculumPath
			if len(args) == 1 {
				path = args[0]
			}
			store, err := curriculum.Load(path)
			if err != nil {
				return err
			}
			printCurriculum(cmd.OutOrStdout(), path, store)
			return nil
		},
	}
}

func printCurriculum(w io.Writer, path string, store *curriculum.Store) {
	fmt.Fprintf(w, "%s: %d topics\n", path, store.TopicCount())
	for _, stage := range []curriculum.Stage{curriculum.StageLGS, curriculum.StageTYT, curriculum.StageAYT} {
		subjects := store.Subjects(stage)
		if len(subjects) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\n", stage)
		for _, s := range subjects {
			fmt.Fprintf(w, "  %-20s %d topics\n", s.Name, len(s.Topics))
		}
	}
}

func newCurriculumExtractCmd() *cobra.Command {
	var (
		lgsPDF string
		yksPDF string
		output string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build a curriculum skeleton from the LGS and YKS guide PDFs",
		Long: strings.TrimSpace(`
Reads the LGS and YKS guide PDFs and writes a curriculum document that lists
the subject headings with empty topic maps. Topics, history and importance are
filled in by hand afterwards.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var lgsText, yksText string
			var err error
			if lgsPDF != "" {
				if lgsText, err = curriculum.ExtractPDFText(lgsPDF); err != nil {
					return err
				}
			}
			if yksPDF != "" {
				if yksText, err = curriculum.ExtractPDFText(yksPDF); err != nil {
					return err
				}
			}

			sk := curriculum.BuildSkeleton(lgsText, yksText)
			data, err := sk.JSON()
			if err != nil {
				return fmt.Errorf("encode skeleton: %w", err)
			}
			for _, s := range sk.Unseen {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: LGS subject %q not found in the guide\n", s)
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
				return err
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write skeleton: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&lgsPDF, "lgs", "", "LGS guide PDF")
	f.StringVar(&yksPDF, "yks", "", "YKS guide PDF")
	f.StringVarP(&output, "output", "o", "-", "output path, - for stdout")
	return cmd
}
