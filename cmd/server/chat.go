package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/vinodismyname/xlquery/config"
	"github.com/vinodismyname/xlquery/internal/chat"
)

var (
	chatFile string
	chatName string
	chatText string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Upload a workbook and ask a question about it",
	Long: `Copy a workbook into the upload directory and ask a chat model about it.

The instruction is sent with the stored file's path appended, together with
every query tool. The model may call tools over several rounds before it
answers; the final answer is printed to stdout.

The backend is any OpenAI-compatible endpoint (env: ` + config.EnvLLMBaseURL + `,
` + config.EnvLLMModel + `, ` + config.EnvLLMAPIKey + `).

Examples:
  xlquery chat --file q3.xlsx --text "Which region sold the most pencils?"
  xlquery chat --file ./tmp/export --name sales.xlsx --text "Summarize the sheet"`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatFile, "file", "f", "", "Workbook to upload")
	chatCmd.Flags().StringVar(&chatName, "name", "", "Stored filename (default: base name of --file)")
	chatCmd.Flags().StringVarP(&chatText, "text", "t", "", "Instruction for the model")
	_ = chatCmd.MarkFlagRequired("file")
	_ = chatCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	opts := []openai.Option{openai.WithModel(a.settings.LLM.Model)}
	if a.settings.LLM.APIKey != "" {
		opts = append(opts, openai.WithToken(a.settings.LLM.APIKey))
	}
	if a.settings.LLM.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(a.settings.LLM.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return fmt.Errorf("chat backend: %w", err)
	}

	f, err := os.Open(chatFile)
	if err != nil {
		return err
	}
	defer f.Close()

	name := chatName
	if name == "" {
		name = filepath.Base(chatFile)
	}

	bridge := chat.NewBridge(a.settings.UploadDir, model, a.tools, a.settings.MaxToolRounds, a.logger)
	answer, err := bridge.Ask(a.logger.WithContext(cmd.Context()), f, name, chatText)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
