package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/ingest"
	"github.com/studyquest/studyquest/internal/logger"
	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/quiz"
	"github.com/studyquest/studyquest/internal/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>...",
	Short: "Generate questions from documents and save them for a quiz",
	Example: "  studyquest generate biology.pdf notes.md --mc 10 --tf 5 -o bio.json\n" +
		"  studyquest quiz --load bio.json",
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(f *pflag.FlagSet) {
	f.Int("mc", 5, "Number of multiple choice questions")
	f.Int("id", 5, "Number of identification questions")
	f.Int("tf", 5, "Number of true/false questions")
	f.String("notes", "", "Extra instructions for the question writer")
	f.StringP("output", "o", session.DefaultExportFile, "File to write the questions to")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mc, _ := cmd.Flags().GetInt("mc")
	id, _ := cmd.Flags().GetInt("id")
	tf, _ := cmd.Flags().GetInt("tf")
	notes, _ := cmd.Flags().GetString("notes")
	output, _ := cmd.Flags().GetString("output")

	want := quiz.Quota{
		quiz.MultipleChoiceType: mc,
		quiz.IdentificationType: id,
		quiz.TrueFalseType:      tf,
	}
	if err := want.Validate(); err != nil {
		return err
	}
	if want.Total() == 0 {
		// Nothing to generate: no documents are read and no model is called.
		if err := writeExport(session.New(), output); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No questions requested; wrote an empty question set to %s\n", output)
		return nil
	}

	text, err := ingest.Texts(ctx, args)
	if err != nil {
		return fmt.Errorf("read documents: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("the documents contain no text")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	gen, err := newGenerator(ctx, st)
	if err != nil {
		return fmt.Errorf("question generation unavailable: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	res, err := gen.Run(ctx, questiongen.Input{Text: text, Quota: want, Notes: notes}, func(p questiongen.Progress) {
		fmt.Fprintf(errOut, "\rchunk %d/%d  %s", p.Chunk, p.Chunks, p.Generated)
	})
	fmt.Fprintln(errOut)
	if err != nil {
		return fmt.Errorf("generate questions: %w", err)
	}
	if len(res.Questions) == 0 {
		return errors.New("no questions could be generated from these documents")
	}

	sess := session.New()
	sess.Load(res.Questions)
	if err := writeExport(sess, output); err != nil {
		return err
	}

	logger.Get().Info("questions written",
		zap.String("run_id", res.RunID),
		zap.String("path", output),
		zap.Int("questions", sess.Len()))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d questions to %s\n", sess.Len(), output)
	fmt.Fprintf(out, "  %-16s %d\n", quiz.MultipleChoiceType.Label(), res.Generated[quiz.MultipleChoiceType])
	fmt.Fprintf(out, "  %-16s %d\n", quiz.IdentificationType.Label(), res.Generated[quiz.IdentificationType])
	fmt.Fprintf(out, "  %-16s %d\n", quiz.TrueFalseType.Label(), res.Generated[quiz.TrueFalseType])
	if !want.Met(res.Generated) {
		fmt.Fprintf(out, "Fewer questions than requested: the documents ran out after %d of %d chunks.\n",
			res.ChunksProcessed, res.ChunksTotal)
	}
	return nil
}

func writeExport(sess *session.Session, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := sess.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
