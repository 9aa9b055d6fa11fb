package cmd

import (
	"fmt"

	"ycensure/internal/fswrite"
	"ycensure/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	writeFilePath    string
	writeFileContent string
	writeFileCheck   bool
)

// writeFileCmd represents the write-file command
var writeFileCmd = &cobra.Command{
	Use:   "write-file",
	Short: "Idempotently write a text file",
	Long: `Write-file creates or overwrites a text file with the given content. A file
that already holds identical content is left untouched and reported as
unchanged. With --check the decision is reported without writing.`,
	Run: func(cmd *cobra.Command, args []string) {
		res, err := fswrite.Write(writeFilePath, writeFileContent, writeFileCheck)
		if err != nil {
			logging.Logger().Fatal("Write failed", zap.Error(err))
		}
		printJSON(res)
	},
}

func init() {
	rootCmd.AddCommand(writeFileCmd)

	writeFileCmd.Flags().StringVar(&writeFilePath, "path", "", "Absolute path of the file (required)")
	writeFileCmd.Flags().StringVar(&writeFileContent, "content", "", "Text content to write (UTF-8)")
	writeFileCmd.Flags().BoolVar(&writeFileCheck, "check", false, "Dry run: report whether a write would happen")

	if err := writeFileCmd.MarkFlagRequired("path"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}
}
