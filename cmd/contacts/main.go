package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/db"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/logger"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/mcp"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/ops"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/photo"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"import": true, "export": true, "fetch": true, "list": true,
	"search": true, "update": true, "delete": true, "link": true,
	"count": true, "decode": true, "encode": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  contacts: local contact store with vCard 2.1/3.0 import and export

  Usage: contacts <command> [options]
         contacts --help

  MCP server mode requires piped input.`)
}

// setup opens the store under baseDir and builds the codec from config.
func setup(baseDir string) (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.LogLevel)

	if err := vcard.SetPhotoMaxPixels(cfg.PhotoMaxPixels); err != nil {
		return nil, fmt.Errorf("invalid photo_max_pixels: %w", err)
	}
	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		logger.Log.Warn().Str("tool", name).Msg("unknown tool in disabled_tools")
	}
	for _, name := range mcp.ValidateDisabledTypes(cfg.DisabledTypes) {
		logger.Log.Warn().Str("type", name).Msg("unknown type in disabled_types")
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	imageDir := cfg.ImagePath(baseDir)
	if err := os.MkdirAll(imageDir, 0700); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	codec := vcard.New(vcard.Options{
		ImageDir:         imageDir,
		Transformer:      photo.Resizer{},
		TransformTimeout: cfg.TransformTimeout(),
	})
	return &env{db: database, cfg: cfg, codec: codec, imageDir: imageDir}, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	e, err := setup(filepath.Join(homeDir, ops.BaseDirName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer e.db.Close()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(e)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			e.db.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'contacts --help' for usage.\n")
		e.db.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(e.db, e.cfg, e.codec, e.imageDir, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		e.db.Close()
		os.Exit(1)
	}
}
