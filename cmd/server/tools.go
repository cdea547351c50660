package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vinodismyname/xlquery/internal/registry"
)

var invokeArgs string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools and their parameters as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a.tools.Descriptors())
	},
}

var invokeCmd = &cobra.Command{
	Use:   "invoke <tool>",
	Short: "Invoke one tool with JSON arguments and print its result",
	Long: `Invoke one tool exactly as an agent would and print the rendered result.

Tool failures print their in-band result ("Error: ...", -1 or []); the error
code is logged to stderr.

Examples:
  xlquery invoke get_excel_metadata --args '{"file_path":"/data/q3.xlsx"}'
  xlquery invoke count_in_excel --args '{"file_path":"/data/q3.xlsx","keyword":"^P","use_regex":true}'`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeArgs, "args", "a", "{}", "Tool arguments as a JSON object")
	rootCmd.AddCommand(toolsCmd, invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	var toolArgs map[string]any
	if err := json.Unmarshal([]byte(invokeArgs), &toolArgs); err != nil {
		return fmt.Errorf("--args must be a JSON object: %w", err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	res, err := a.tools.Invoke(a.logger.WithContext(cmd.Context()), args[0], toolArgs)
	if err != nil {
		return err
	}
	out, err := registry.Render(res)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
