package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-salesbot-backend/internal/config"
	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/salesbot"
	"github.com/tbourn/go-salesbot-backend/internal/services"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

// loadBotConfig reads a bot configuration from YAML or JSON (JSON is valid
// YAML) and rejects one missing required fields.
func loadBotConfig(r io.Reader) (domain.BotConfig, error) {
	var cfg domain.BotConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse bot config: %w", err)
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		return cfg, &services.ValidationError{Fields: missing}
	}
	return cfg.Normalize(), nil
}

func newPromptCmd() *cobra.Command {
	var (
		path     string
		useModel bool
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt for a bot configuration",
		Long: `Render the sales bot system prompt for a YAML or JSON configuration file.
By default the built-in template is used; with --model the configured model
writes the prompt and the template is the fallback.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in io.Reader = cmd.InOrStdin()
			if path != "" && path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			bc, err := loadBotConfig(in)
			if err != nil {
				return err
			}

			if !useModel {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), salesbot.TemplatePrompt(bc))
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			model, err := upstream.NewModelClient(cmd.Context(), cfg.Model)
			if err != nil {
				return err
			}
			svc := &services.BotService{Model: model, Log: zerolog.New(cmd.ErrOrStderr())}
			kind, prompt := svc.Synthesize(cmd.Context(), bc)
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", kind)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "-", "bot configuration file (YAML or JSON); - reads stdin")
	cmd.Flags().BoolVar(&useModel, "model", false, "ask the configured model to write the prompt")
	return cmd
}
