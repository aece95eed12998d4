package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sozercan/aop-analyst/apimodels"
	"github.com/sozercan/aop-analyst/internal/framework"
	"github.com/sozercan/aop-analyst/internal/prompt"
)

var (
	requestFile string
	showStats   bool
	asJSON      bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the analysis prompt built for a request file",
	Long: `Build the analysis prompt for a JSON request file using the current
framework and print it. No model is called.`,
	RunE: runPrompt,
}

var frameworkCmd = &cobra.Command{
	Use:   "framework",
	Short: "Inspect or reset the analysis framework",
}

var frameworkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current framework",
	RunE:  runFrameworkShow,
}

var frameworkResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the stored framework with the defaults",
	RunE:  runFrameworkReset,
}

func init() {
	promptCmd.Flags().StringVarP(&requestFile, "request", "r", "", "Path to an analysis request JSON file")
	promptCmd.Flags().BoolVar(&showStats, "stats", false, "Print prompt statistics instead of the prompt")
	_ = promptCmd.MarkFlagRequired("request")

	frameworkShowCmd.Flags().BoolVar(&asJSON, "json", false, "Print the framework document as JSON")
	frameworkCmd.AddCommand(frameworkShowCmd)
	frameworkCmd.AddCommand(frameworkResetCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(requestFile)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req apimodels.AnalysisRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode request %s: %w", requestFile, err)
	}

	frameworks, closeFrameworks, err := openFrameworkStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFrameworks()

	fw, err := frameworks.Load(cmd.Context())
	if err != nil {
		return err
	}

	p := prompt.Build(req, fw)
	if showStats {
		return writeJSON(cmd, prompt.Analyze(p, req))
	}
	fmt.Fprintln(cmd.OutOrStdout(), p)
	return nil
}

func runFrameworkShow(cmd *cobra.Command, args []string) error {
	frameworks, closeFrameworks, err := openFrameworkStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFrameworks()

	fw, err := frameworks.Load(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(cmd, fw)
	}
	fmt.Fprint(cmd.OutOrStdout(), framework.Summary(fw))
	return nil
}

func runFrameworkReset(cmd *cobra.Command, args []string) error {
	frameworks, closeFrameworks, err := openFrameworkStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFrameworks()

	fw, err := frameworks.Reset(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Framework reset to defaults (version %d)\n", fw.Version)
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
