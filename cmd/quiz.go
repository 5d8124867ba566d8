package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studyquest/studyquest/internal/session"
)

var quizCmd = &cobra.Command{
	Use:         "quiz",
	Short:       "Open the quiz UI, optionally with saved questions",
	Annotations: map[string]string{annotationTUI: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("load")
		sess, err := loadSession(path)
		if err != nil {
			return err
		}
		return runTUI(cmd, sess)
	},
}

func init() {
	quizCmd.Flags().StringP("load", "l", "", "Questions file written by generate or the export screen")
}

// loadSession returns an empty session, or one imported from path.
func loadSession(path string) (*session.Session, error) {
	sess := session.New()
	if path == "" {
		return sess, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions file: %w", err)
	}
	defer f.Close()

	if err := sess.Import(f); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return sess, nil
}
