package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/config"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/engine"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/export"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/history"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/logger"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/model"
)

type runFlags struct {
	configPath  string
	topic       string
	depth       int
	timeLimit   int
	maxSources  int
	focus       string
	citation    string
	visuals     bool
	outDir      string
	researchKey string
	llmKey      string
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Research a topic and write the enhanced report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResearch(cmd, f)
		},
	}

	bindRunFlags(cmd, f)
	return cmd
}

func bindRunFlags(cmd *cobra.Command, f *runFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "configs/config.yaml", "Path to the YAML config file")
	fs.StringVarP(&f.topic, "topic", "t", "", "The research topic (prompted interactively when omitted)")
	fs.IntVar(&f.depth, "depth", 0, fmt.Sprintf("Research depth %d-%d", model.MinDepth, model.MaxDepth))
	fs.IntVar(&f.timeLimit, "time-limit", 0, fmt.Sprintf("Time limit hint in seconds %d-%d", model.MinTimeLimit, model.MaxTimeLimit))
	fs.IntVar(&f.maxSources, "max-sources", 0, fmt.Sprintf("Maximum sources %d-%d", model.MinSources, model.MaxSources))
	fs.StringVar(&f.focus, "focus", "", "Research focus: Comprehensive, Technical, Business Impact, Future Trends, Academic")
	fs.StringVar(&f.citation, "citation", "", "Citation style: APA, MLA, Chicago, Harvard, IEEE")
	fs.BoolVar(&f.visuals, "visuals", true, "Ask for visualization suggestions")
	fs.StringVar(&f.outDir, "out", "", "Directory for the exported reports")
	fs.StringVar(&f.researchKey, "research-key", "", "Research service API key (default $"+config.EnvResearchKey+")")
	fs.StringVar(&f.llmKey, "llm-key", "", "LLM API key (default $"+config.EnvLLMKey+")")
}

// loadConfig 配置文件仅在显式指定时必须存在
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("无法加载配置文件: %w", err)
}

func runResearch(cmd *cobra.Command, f *runFlags) error {
	cfg, err := loadConfig(cmd, f.configPath)
	if err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("无法初始化日志: %w", err)
	}

	opts, err := baseOptions(cmd, f, cfg)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), apperr.UserMessage(err))
		return err
	}
	outDir := cfg.OutputDir
	if f.outDir != "" {
		outDir = f.outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng := engine.NewEngine(cfg)
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("topic") {
		opts.Topic = f.topic
		return researchOnce(ctx, eng, opts, outDir, out)
	}

	return interactive(ctx, cmd.InOrStdin(), out, cmd.ErrOrStderr(), opts, func(o engine.RunOptions) error {
		return researchOnce(ctx, eng, o, outDir, out)
	})
}

// interactive 逐个读取主题，直到输入空行或输入结束
func interactive(ctx context.Context, in io.Reader, out, errOut io.Writer, opts engine.RunOptions, research func(engine.RunOptions) error) error {
	hist := history.New()
	reader := bufio.NewReader(in)
	var lastErr error
	for {
		if hist.Len() > 0 {
			fmt.Fprintln(out, "📚 Research History")
			for _, l := range hist.Labels() {
				fmt.Fprintln(out, "  -", l)
			}
		}
		fmt.Fprint(out, "What would you like to research today? ")
		input, readErr := reader.ReadString('\n')
		topic := strings.TrimSpace(input)
		if topic == "" {
			if hist.Len() == 0 && lastErr == nil {
				err := apperr.InvalidRequest("Please enter a research topic.")
				fmt.Fprintln(errOut, apperr.UserMessage(err))
				return err
			}
			return lastErr
		}

		opts.Topic = topic
		// 凭据缺失时不记录历史
		if opts.Credentials.Complete() {
			hist.Add(topic)
		}
		lastErr = research(opts)
		if readErr == io.EOF || ctx.Err() != nil {
			return lastErr
		}
	}
}

// baseOptions 合并 flag 与配置文件，flag 优先
func baseOptions(cmd *cobra.Command, f *runFlags, cfg *config.Config) (engine.RunOptions, error) {
	opts := engine.RunOptions{
		MaxDepth:    cfg.Defaults.MaxDepth,
		TimeLimit:   cfg.Defaults.TimeLimit,
		MaxSources:  cfg.Defaults.MaxSources,
		Credentials: cfg.Credentials(),
	}
	if f.depth != 0 {
		opts.MaxDepth = f.depth
	}
	if f.timeLimit != 0 {
		opts.TimeLimit = f.timeLimit
	}
	if f.maxSources != 0 {
		opts.MaxSources = f.maxSources
	}
	if f.researchKey != "" {
		opts.Credentials.Research = f.researchKey
	}
	if f.llmKey != "" {
		opts.Credentials.LLM = f.llmKey
	}

	prefs, err := cfg.Preferences()
	if err != nil {
		return opts, err
	}
	if f.focus != "" {
		if prefs.Focus, err = model.ParseFocus(f.focus); err != nil {
			return opts, err
		}
	}
	if f.citation != "" {
		if prefs.CitationStyle, err = model.ParseCitationStyle(f.citation); err != nil {
			return opts, err
		}
	}
	if cmd.Flags().Changed("visuals") {
		prefs.IncludeVisuals = f.visuals
	}
	opts.Preferences = prefs
	return opts, nil
}

func researchOnce(ctx context.Context, eng *engine.Engine, opts engine.RunOptions, outDir string, w io.Writer) error {
	opts.ProgressCallback = func(status string, progress int) {
		switch status {
		case engine.StatusGathering:
			fmt.Fprintln(w, "📡 Phase 1/2: Gathering information from the web...")
		case engine.StatusGathered:
			fmt.Fprintln(w, "🧠 Phase 2/2: Enhancing research with deeper insights...")
		}
	}
	opts.OnInitialReport = func(report string) {
		fmt.Fprintf(w, "\n===== Initial Research Report =====\n\n%s\n\n", report)
	}

	res, err := eng.Run(ctx, opts)
	if err != nil {
		fmt.Fprintln(w, apperr.UserMessage(err))
		if res != nil && res.InitialReport != "" {
			fmt.Fprintln(w, "The initial research report above is still available.")
		}
		return err
	}

	fmt.Fprintf(w, "===== 📊 Enhanced Research Report =====\n\n%s\n\n", res.EnhancedReport)

	paths, err := export.WriteFiles(outDir, res.Topic, res.EnhancedReport)
	if err != nil {
		return fmt.Errorf("写入报告失败: %w", err)
	}
	for _, p := range paths {
		fmt.Fprintln(w, "📥 Saved", p)
	}
	fmt.Fprintln(w, "✅ Research completed successfully!")
	return nil
}
