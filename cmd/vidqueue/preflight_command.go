package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidqueue/internal/config"
	"vidqueue/internal/credentials"
	"vidqueue/internal/listfile"
	"vidqueue/internal/naming"
	"vidqueue/internal/preflight"
	"vidqueue/internal/settings"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var skipAI bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check tools, directories, credential store and AI naming",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			in, err := preflightInputs(cfg, skipAI)
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, in)

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, passLabel(r.Passed), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Result", "Detail"}, rows))
			if failed := preflight.Failed(results); failed > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failed)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipAI, "skip-ai", false, "Do not probe the language model endpoint")
	return cmd
}

func preflightInputs(cfg *config.Config, skipAI bool) (preflight.Inputs, error) {
	source, err := credentials.NewFromConfig(cfg)
	if err != nil {
		return preflight.Inputs{}, err
	}
	in := preflight.Inputs{Credentials: source}

	current, err := settings.NewStore(cfg.Paths.SettingsFile, cfg.Downloader.DefaultSaveDir).Load()
	if err != nil {
		return preflight.Inputs{}, err
	}
	if in.SaveDir, err = config.ExpandPath(current.SavePath); err != nil {
		return preflight.Inputs{}, err
	}

	if !skipAI {
		llmCfg := cfg.GetLLM()
		in.AI = naming.NewAssistant(listfile.New(cfg.Paths.APIKeysFile), llmCfg.Models, naming.LLMFactory(llmCfg),
			naming.WithTokenLimits(llmCfg.ProbeTokens, llmCfg.RenameTokens))
	}
	return in, nil
}

func passLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "FAIL"
}
