package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/studyquest/studyquest/internal/app"
	"github.com/studyquest/studyquest/internal/config"
	"github.com/studyquest/studyquest/internal/llm"
	"github.com/studyquest/studyquest/internal/logger"
	"github.com/studyquest/studyquest/internal/questiongen"
	"github.com/studyquest/studyquest/internal/screen"
	"github.com/studyquest/studyquest/internal/session"
	"github.com/studyquest/studyquest/internal/store"
)

// annotationTUI marks commands that take over the terminal. Their logs go
// to a file instead of stderr.
const annotationTUI = "tui"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "studyquest",
	Short: "Turn study documents into practice quizzes",
	Long: "StudyQuest reads your notes (text, Markdown, PDF or Word) and uses a language model\n" +
		"to write multiple choice, identification and true/false questions about them.",
	Annotations:       map[string]string{annotationTUI: "true"},
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, session.New())
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./studyquest.yaml or the user config dir)")
	flags.String("provider", "", "LLM provider: gemini, openai, anthropic, openrouter, ollama or mock")
	flags.String("model", "", "Model for the selected provider")
	flags.String("db", "", "Path to SQLite database file (overrides STUDYQUEST_DB env var)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	for key, flag := range map[string]string{
		"llm.provider": "provider",
		"llm.model":    "model",
		"db.path":      "db",
		"log.level":    "log-level",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// initialize loads configuration and sets up the global logger.
func initialize(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	output := ""
	if cmd.Annotations[annotationTUI] == "true" {
		output = cfg.Log.File
		if output == "" {
			output = config.DefaultLogFile()
		}
	}
	if err := logger.Initialize(cfg.Logger(output)); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	logger.Get().Debug("configuration loaded",
		zap.String("file", cfg.File),
		zap.String("provider", cfg.LLMSettings.Provider))
	return nil
}

// resolveDBPath returns the database path from --db or STUDYQUEST_DB,
// then the default XDG path.
func resolveDBPath() (string, error) {
	if p := cfg.DB.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newGenerator builds the provider chain and orchestrator. LLM calls and
// runs are recorded in st.
func newGenerator(ctx context.Context, st *store.Store) (*questiongen.Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.Get()
	provider, err := llm.NewProvider(ctx, cfg.LLM(), st.EventRepo(), log)
	if err != nil {
		return nil, err
	}
	return questiongen.NewOrchestrator(provider, cfg.QuestionGen(),
		questiongen.WithEventRepo(st.EventRepo(), cfg.LLMSettings.Provider),
		questiongen.WithLogger(log))
}

// runTUI starts the terminal UI on sess. Without a working provider the
// UI still opens; generation is disabled and the reason is shown.
func runTUI(cmd *cobra.Command, sess *session.Session) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	log := logger.Get()
	deps := &screen.Deps{
		Session:        sess,
		NotesMaxLength: cfg.Generation.NotesMaxLength,
		Log:            log,
	}

	gen, err := newGenerator(cmd.Context(), st)
	if err != nil {
		log.Warn("question generation unavailable", zap.Error(err))
		deps.GeneratorErr = err
	} else {
		deps.Generator = gen
	}

	return app.Run(deps)
}
