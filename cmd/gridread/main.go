package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/widgetforge/pkg/browser"
	"github.com/entrhq/widgetforge/pkg/config"
	"github.com/entrhq/widgetforge/pkg/logging"
	"github.com/entrhq/widgetforge/pkg/table"
	"github.com/entrhq/widgetforge/pkg/widget"
)

const (
	version       = "0.1.0"
	defaultTable  = "table"
	defaultFormat = "yaml"
	sessionName   = "gridread"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath     string
	File           string
	URL            string
	Table          string
	Assoc          string
	Format         string
	ProductVersion string
	Save           string
	IgnoreTop      int
	IgnoreBottom   int
	ShowVersion    bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("gridread version %s\n", version)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cli, os.Stdout); err != nil {
		cancel()
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&cli.File, "file", "", "Read the table from a saved HTML page")
	flag.StringVar(&cli.URL, "url", "", "Read the table from a live page")
	flag.StringVar(&cli.Table, "table", defaultTable, "Table locator (CSS, or XPath starting with / or ( )")
	flag.StringVar(&cli.Assoc, "assoc", "", "Key rows by this column (header name or index)")
	flag.StringVar(&cli.Format, "format", defaultFormat, "Output format: yaml or grid")
	flag.StringVar(&cli.ProductVersion, "product-version", "", "Product version, overrides the configuration")
	flag.StringVar(&cli.Save, "save", "", "With -url, also save the loaded page for later -file runs")
	flag.IntVar(&cli.IgnoreTop, "ignore-top", 0, "Skip this many body rows at the top")
	flag.IntVar(&cli.IgnoreBottom, "ignore-bottom", 0, "Skip this many body rows at the bottom")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gridread - Read an HTML table through its logical cell grid\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  gridread -file <page.html> [options]\n")
		fmt.Fprintf(os.Stderr, "  gridread -url <url> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridread -file report.html -table '#invoices'\n")
		fmt.Fprintf(os.Stderr, "  gridread -file report.html -table '#invoices' -assoc Number\n")
		fmt.Fprintf(os.Stderr, "  gridread -url https://example.com/orders -format grid\n")
		fmt.Fprintf(os.Stderr, "  gridread -url https://example.com/orders -save orders.html\n")
	}

	flag.Parse()
	return cli
}

func run(ctx context.Context, cli *CLIConfig, out io.Writer) error {
	if (cli.File == "") == (cli.URL == "") {
		return errors.New("exactly one of -file or -url is required")
	}
	if cli.Save != "" && cli.URL == "" {
		return errors.New("-save needs -url")
	}
	if cli.Format != "yaml" && cli.Format != "grid" {
		return fmt.Errorf("unknown format %q", cli.Format)
	}

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cli.ProductVersion != "" {
		cfg.Browser.ProductVersion = cli.ProductVersion
	}

	// Falls back to stderr when the log directory is unusable.
	logger, _ := logging.NewLogger(sessionName)
	defer logger.Close()
	if err := logger.SetLevel(cfg.Logging.Verbosity); err != nil {
		return err
	}

	b, closeBrowser, err := openBrowser(ctx, cli, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBrowser()

	if err := ctx.Err(); err != nil {
		return err
	}

	tbl, err := openTable(b, cli)
	if err != nil {
		return err
	}
	logger.Infof("reading table %s", cli.Table)

	if cli.Format == "grid" {
		return renderGrid(out, tbl)
	}
	return renderYAML(out, tbl)
}

// openBrowser builds the root browser over a parsed file or a live page. The
// returned func releases whatever the browser holds.
func openBrowser(ctx context.Context, cli *CLIConfig, cfg *config.Config, logger *logging.Logger) (*browser.Browser, func(), error) {
	if cli.File != "" {
		f, err := os.Open(cli.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open page: %w", err)
		}
		defer f.Close()
		d, err := browser.NewDocumentDriver(f)
		if err != nil {
			return nil, nil, err
		}
		return browser.FromConfig(d, cfg, logger), func() {}, nil
	}

	m := browser.NewSessionManager()
	if err := m.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	release := func() {
		if err := m.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	}

	opts := browser.SessionOptionsFromConfig(cfg.Browser)
	if opts.Engine == "document" {
		opts.Engine = ""
	}
	s, err := m.StartSession(sessionName, opts)
	if err != nil {
		release()
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		release()
		return nil, nil, err
	}
	if err := s.Navigate(cli.URL, browser.NavigateOptions{WaitUntil: "load"}); err != nil {
		release()
		return nil, nil, err
	}
	logger.Debugf("navigated to %s", s.CurrentURL)

	if cli.Save != "" {
		content, err := s.Content()
		if err == nil {
			err = os.WriteFile(cli.Save, []byte(content), 0600)
		}
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("failed to save page: %w", err)
		}
		logger.Infof("saved page to %s", cli.Save)
	}

	return s.Browser(
		browser.WithProductVersion(cfg.Browser.ProductVersion),
		browser.WithLogger(logger),
		browser.WithWait(cfg.Fill.WaitTimeout, cfg.Fill.PollInterval),
	), release, nil
}

func openTable(b *browser.Browser, cli *CLIConfig) (*table.Table, error) {
	opts := []table.Option{
		table.WithIgnoreTopRows(cli.IgnoreTop),
		table.WithIgnoreBottomRows(cli.IgnoreBottom),
	}
	if cli.Assoc != "" {
		opts = append(opts, table.WithAssocColumn(cli.Assoc))
	}

	page := widget.DefineView("Page", widget.WithFields(widget.Fields{
		"table": table.New(cli.Table, opts...),
	}))
	v, err := page.Open(b)
	if err != nil {
		return nil, err
	}
	w, err := v.Widget("table")
	if err != nil {
		return nil, err
	}
	return w.(*table.Table), nil
}
