package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/answer"
	"github.com/spigell/easy-applier/internal/applicator"
	"github.com/spigell/easy-applier/internal/config"
	"github.com/spigell/easy-applier/internal/driver/chrome"
	"github.com/spigell/easy-applier/internal/filtering"
	"github.com/spigell/easy-applier/internal/jobs"
	"github.com/spigell/easy-applier/internal/linkedin"
	"github.com/spigell/easy-applier/internal/llm"
	"github.com/spigell/easy-applier/internal/logger"
	"github.com/spigell/easy-applier/internal/matcher"
	"github.com/spigell/easy-applier/internal/profile"
	"github.com/spigell/easy-applier/internal/secrets"
	"github.com/spigell/easy-applier/internal/wizard"
)

const (
	PromptYes             = "Yes"
	PromptNo              = "No"
	PromptPostingsToFile  = "Dump ready postings to file"
	PromptFilterStatuses  = "Show filters"
	historyFilterDisabled = "disabled by --do-not-exclude-applied"
)

var apiKeyEnv = map[string]string{
	llm.ProviderGemini: "GEMINI_API_KEY",
	llm.ProviderOpenAI: "OPENAI_API_KEY",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search postings, filter them and fill their Easy Apply wizards",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		if err := run(cmd, logger); err != nil {
			if errors.Is(err, applicator.ErrDeclined) {
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
			logger.Fatal("run failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before applying")
	runCmd.Flags().Bool("dry-run", false, "search and filter only, never open an application")
	runCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude postings found in the history file")
	runCmd.Flags().Bool("headless", false, "run the browser without a window")

	viper.BindPFlag("output.dry-run", runCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("browser.headless", runCmd.Flags().Lookup("headless"))
}

// run wires the components and executes one batch. The browser is closed on
// every return path, including interrupts.
func run(cmd *cobra.Command, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger.Info("starting the easy-applier", zap.String("version", version))

	redacted := *cfg
	if redacted.LLM.APIKey != "" {
		redacted.LLM.APIKey = "***"
	}
	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	prof, err := profile.Load(cfg.Profile)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", cfg.Profile, err)
	}

	model, err := newModel(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}

	resolver, err := answer.New(model, prof, cfg.Answer, logger)
	if err != nil {
		return err
	}

	filters, history, err := prepareFilters(cmd, cfg, logger)
	if err != nil {
		return err
	}
	for _, s := range filtering.Describe(filters) {
		logger.Debug("filter", zap.String("name", s.Name), zap.Bool("enabled", s.Enabled), zap.Any("details", s.Details))
	}

	drv, err := chrome.New(ctx, cfg.Browser, logger)
	if err != nil {
		return err
	}
	defer drv.Close()

	site := linkedin.New(drv, cfg.Site, logger)
	if err := site.ValidateSession(ctx); err != nil {
		if !errors.Is(err, linkedin.ErrNotLoggedIn) {
			return err
		}
		logger.Info("log in to linkedin in the browser window", zap.Duration("timeout", cfg.LoginTimeout))
		if err := site.WaitForLogin(ctx, cfg.LoginTimeout); err != nil {
			return err
		}
	}

	controller := wizard.New(drv, resolver, prof.ResumePath, cfg.Wizard, logger)
	app := applicator.New(site, controller, filters, history, cfg.Output, logger)

	var confirm applicator.Confirm
	if !cfg.Output.DryRun && cmd.Flag("auto-approve").Value.String() == "false" {
		confirm = func(p *filtering.Partition) (bool, error) {
			return askConfirmation(p, filters, logger)
		}
	}

	rep, err := app.Run(ctx, cfg.Search, confirm)
	if err != nil {
		return err
	}

	logger.Info("finished",
		zap.String("run_id", rep.RunID),
		zap.Int("processed", len(rep.Processed)),
		zap.Int("unprocessed", len(rep.Unprocessed)),
		zap.Int("failed", rep.Failed()),
		zap.Int("blacklisted", len(rep.Blacklisted)),
		zap.Int("already_applied", len(rep.AlreadyApplied)),
	)
	return nil
}

func newModel(ctx context.Context, cfg llm.Config, logger *zap.Logger) (llm.Model, error) {
	var apiKey string
	if cfg.Provider != llm.ProviderOllama {
		var err error
		apiKey, err = secrets.Load(secrets.Source{
			Name:  cfg.Provider + " api key",
			Value: cfg.APIKey,
			File:  cfg.APIKeyFile,
			Env:   apiKeyEnv[cfg.Provider],
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set llm.api-key-file or %s)", err, apiKeyEnv[cfg.Provider])
		}
	}
	return llm.New(ctx, cfg, apiKey, logger)
}

func prepareFilters(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) ([]filtering.Filter, *jobs.History, error) {
	titles, err := matcher.Compile(cfg.Blacklist.Titles)
	if err != nil {
		return nil, nil, fmt.Errorf("title blacklist: %w", err)
	}
	companies, err := matcher.Compile(cfg.Blacklist.Companies)
	if err != nil {
		return nil, nil, fmt.Errorf("company blacklist: %w", err)
	}

	var history *jobs.History
	if cfg.Output.HistoryFile != "" {
		if history, err = jobs.HistoryFromFile(cfg.Output.HistoryFile); err != nil {
			return nil, nil, fmt.Errorf("read history %s: %w", cfg.Output.HistoryFile, err)
		}
	}

	filters := []filtering.Filter{
		filtering.NewBlacklist(titles, companies, logger),
		filtering.NewApplied(logger),
		filtering.NewAppliedHistory(history, logger),
	}

	if flag := cmd.Flag("do-not-exclude-applied"); flag != nil && flag.Value.String() == "true" {
		filtering.DisableByName(filters, "applied_history", historyFilterDisabled)
	}
	return filters, history, nil
}

func askConfirmation(p *filtering.Partition, filters []filtering.Filter, logger *zap.Logger) (bool, error) {
	prompt := promptui.Select{
		Label: fmt.Sprintf("Apply to %d postings?", len(p.Ready)),
		Items: []string{PromptYes, PromptNo, PromptPostingsToFile, PromptFilterStatuses},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return false, err
		}

		switch action {
		case PromptYes:
			return true, nil
		case PromptNo:
			return false, nil
		case PromptPostingsToFile:
			ready := &jobs.Postings{}
			for _, c := range p.Ready {
				ready.Add(c.Posting)
			}
			filename, err := ready.DumpToTmpFile()
			if err != nil {
				return false, fmt.Errorf("dump postings to file: %w", err)
			}
			logger.Info("dumping ready postings to file", zap.String("filename", filename))
		case PromptFilterStatuses:
			pretty, _ := json.MarshalIndent(filtering.Describe(filters), "", "  ")
			logger.Info(string(pretty))
		default:
			return false, fmt.Errorf("invalid action: %s", action)
		}
	}
}
