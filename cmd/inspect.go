package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/driver/static"
	"github.com/spigell/easy-applier/internal/form"
	"github.com/spigell/easy-applier/internal/logger"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot.html>",
	Short: "Classify the form fields of a saved Easy Apply page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		out, err := inspect(cmd.Context(), args[0], logger)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspect(ctx context.Context, path string, logger *zap.Logger) (string, error) {
	html, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	d, err := static.New(string(html))
	if err != nil {
		return "", err
	}

	fields, err := form.NewClassifier(d, form.DefaultSelectors(), logger).ClassifyAll(ctx)
	if err != nil {
		return "", err
	}
	logger.Info("classified snapshot", zap.String("path", path), zap.Int("fields", len(fields)))
	return form.Describe(fields), nil
}
