package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/session"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a questions file without opening it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		qs, history, err := session.Decode(f)
		if err != nil {
			return err
		}

		counts := quiz.Count(qs)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d questions\n", args[0], len(qs))
		for _, t := range quiz.Types {
			fmt.Fprintf(out, "  %-16s %d\n", t.Label(), counts[t])
		}

		var missed, wrong int
		for _, e := range history {
			if e.TimesWrong > 0 {
				missed++
				wrong += e.TimesWrong
			}
		}
		fmt.Fprintf(out, "  %d questions missed at least once, %d wrong answers recorded\n", missed, wrong)
		return nil
	},
}
