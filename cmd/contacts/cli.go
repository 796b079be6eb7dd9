package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/config"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/contact"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/errors"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/ops"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/vcard"
	"github.com/tizenorg/platform.core.pim.contacts-service-sub005/internal/web"
)

// env carries what the commands need. It is nil for --help and --version.
type env struct {
	db       *sql.DB
	cfg      *config.Config
	codec    *vcard.Codec
	imageDir string
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "contacts",
		Usage:   "Local contact store with vCard import and export",
		Version: Version,
		Commands: []*cli.Command{
			importCmd(e),
			exportCmd(e),
			fetchCmd(e),
			listCmd(e),
			searchCmd(e),
			updateCmd(e),
			deleteCmd(e),
			linkCmd(e),
			countCmd(e),
			decodeCmd(e),
			encodeCmd(e),
			serveCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// importCmd creates the import command.
func importCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import every contact in a .vcf file",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, e.db, e.cfg, e.codec, ops.ImportInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export contacts to a .vcf file (all contacts when no IDs are given)",
		ArgsUsage: "[id...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.contacts/exports/<name>-<timestamp>.vcf)"},
			&cli.BoolFlag{Name: "aggregate", Aliases: []string{"a"}, Usage: "Merge linked contacts into one vCard per person"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, e.db, e.cfg, e.codec, ops.ExportInput{
				Path:      c.String("path"),
				IDs:       c.Args().Slice(),
				Aggregate: c.Bool("aggregate"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a contact by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "vcard", Usage: "Include the vCard 3.0 rendering"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, e.db, e.codec, ops.FetchInput{
				ID:           c.Args().First(),
				IncludeVCard: c.Bool("vcard"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List contacts ordered by display name",
		Flags: paginationFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.List(e.db, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find contacts whose display name or UID contains the query",
		ArgsUsage: "<query>",
		Flags:     paginationFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.Search(e.db, ops.SearchInput{
				Query:  strings.Join(c.Args().Slice(), " "),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Replace a contact with a single vCard read from stdin",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("vcard must be piped via stdin"))
			}
			text, err := readStdin(ops.MaxDecodeBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Update(c.Context, e.db, e.codec, ops.UpdateInput{
				ID:    c.Args().First(),
				VCard: text,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a contact",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(e.db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// linkCmd creates the link command.
func linkCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "link",
		Usage:     "Link contacts to the same person (the first ID's person)",
		ArgsUsage: "<id> <id>...",
		Action: func(c *cli.Context) error {
			output, err := ops.Link(e.db, ops.LinkInput{IDs: c.Args().Slice()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// countCmd creates the count command.
func countCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Count the vCard objects in a .vcf file without importing it",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			output, err := ops.Count(e.cfg, ops.CountInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// decodeCmd creates the decode command.
func decodeCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "Parse vCard text from stdin and print the records as JSON",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("vcard text must be piped via stdin"))
			}
			text, err := readStdin(ops.MaxDecodeBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Decode(c.Context, e.codec, ops.DecodeInput{Text: text})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// encodeCmd creates the encode command.
func encodeCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "Read a JSON array of records from stdin and print vCard 3.0 text",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "aggregate", Aliases: []string{"a"}, Usage: "Merge all records into one vCard"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("records must be piped via stdin"))
			}
			data, err := readStdin(ops.MaxDecodeBytes)
			if err != nil {
				return outputError(err)
			}
			var records []*contact.Record
			if err := json.Unmarshal([]byte(data), &records); err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("records must be a JSON array: %v", err)))
			}

			output, err := ops.Encode(c.Context, e.codec, ops.EncodeInput{
				Records:   records,
				Aggregate: c.Bool("aggregate"),
			})
			if err != nil {
				return outputError(err)
			}
			_, err = io.WriteString(os.Stdout, output.VCard)
			return err
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(e.db, e.codec, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv)
		},
	}
}

func paginationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
		&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Results to skip"},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var ce *errors.ContactsError
	if stderrors.As(err, &ce) {
		return cli.Exit(fmt.Sprintf("[%s] %s", ce.Code, ce.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	return !isTerminal()
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", errors.NewIO(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewOutOfMemory(int(limit))
	}
	return string(data), nil
}
