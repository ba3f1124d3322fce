package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	// .env 不存在时直接使用进程环境变量
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "research_genius",
		Short: "Two-phase AI research assistant",
		Long: `research_genius gathers an initial report on a topic from a deep-research service,
then asks an LLM to enhance it with examples, case studies and deeper insight.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "research_genius", version)
		},
	}
}
