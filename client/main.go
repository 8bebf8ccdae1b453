package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeafMist/news-scraper/internal/aggregator"
	"github.com/DeafMist/news-scraper/internal/config"
	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/searchclient"
	"github.com/DeafMist/news-scraper/internal/session"
)

var (
	flagConfig  string
	flagAPIURL  string
	flagTimeout time.Duration

	flagKeywords string
	flagDomains  []string
	flagOrder    string
	flagTab      string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsclient",
		Short:         "Search aggregated news by keyword",
		Long:          "newsclient queries the news backend for keywords, restricted to a list of source domains, and lets you sort and filter the results.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "backend base URL (overrides config)")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "request timeout (overrides config)")

	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		RunE:  runShell,
	}

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search and print the results",
		RunE:  runSearch,
	}
	searchCmd.Flags().StringVarP(&flagKeywords, "keywords", "k", "", "comma-separated keywords")
	searchCmd.Flags().StringSliceVarP(&flagDomains, "domain", "d", nil, "allowed domain (repeatable, replaces configured domains)")
	searchCmd.Flags().StringVar(&flagOrder, "order", string(aggregator.Descending), "sort order: asc or desc")
	searchCmd.Flags().StringVar(&flagTab, "tab", aggregator.All, "show only results for this keyword")
	_ = searchCmd.MarkFlagRequired("keywords")

	root.AddCommand(shellCmd, searchCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// newSession builds a session from the config file and command-line overrides.
func newSession(log *slog.Logger, domains []string) (*session.Session, time.Duration, error) {
	cfg, err := config.LoadClient(flagConfig)
	if err != nil {
		return nil, 0, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	timeout := cfg.TimeoutDuration()
	if flagTimeout > 0 {
		timeout = flagTimeout
	}
	if domains == nil {
		domains = cfg.Domains
	}

	log.Debug("client configured",
		slog.String("api_url", cfg.APIURL),
		slog.Duration("timeout", timeout),
		slog.Int("domains", len(domains)),
	)

	sess := session.New(session.Options{
		Domains:  domains,
		Searcher: searchclient.New(cfg.APIURL, timeout),
		Logger:   log,
	})
	return sess, timeout, nil
}

func clientLogger(w io.Writer) *slog.Logger {
	return logger.NewWithWriter(w, "client")
}

func runShell(cmd *cobra.Command, _ []string) error {
	sess, timeout, err := newSession(clientLogger(cmd.ErrOrStderr()), nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	sh := &shell{sess: sess, out: cmd.OutOrStdout(), timeout: timeout}
	return sh.run(ctx, cmd.InOrStdin())
}

func runSearch(cmd *cobra.Command, _ []string) error {
	var domains []string
	if cmd.Flags().Changed("domain") {
		domains = flagDomains
	}
	sess, timeout, err := newSession(clientLogger(cmd.ErrOrStderr()), domains)
	if err != nil {
		return err
	}

	order, err := aggregator.ParseSortOrder(flagOrder)
	if err != nil {
		return err
	}
	if order != sess.Order() {
		sess.ToggleSort()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := sess.Search(ctx, flagKeywords); err != nil {
		return errors.New(searchFailure(err))
	}
	if !sess.SelectKeyword(flagTab) {
		return fmt.Errorf("no results for keyword %q", flagTab)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderView(sess))
	return nil
}
