// Command cfi is the CLI for working with EPUB canonical fragment
// identifiers. It parses and transforms identifiers, merges line rectangles
// into highlight outlines, extracts text and verses from books, and renders
// highlight overlays against a live Chrome page.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/anthonytopper/customer-web-xp/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for cfi.
type CLI struct {
	// Global flags
	LogLevel  string          `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn"`
	LogFormat string          `name:"log-format" help:"Log format (text, json)" default:"text" enum:"text,json"`
	Config    kong.ConfigFlag `help:"Load flag defaults from a JSON file"`

	Parse   ParseCmd   `cmd:"" help:"Parse an identifier and print its parts"`
	Step    StepCmd    `cmd:"" help:"Apply a step transformation to an identifier"`
	Range   RangeCmd   `cmd:"" help:"Combine two positions into a range identifier"`
	Compare CompareCmd `cmd:"" help:"Compare two identifiers"`
	Merge   MergeCmd   `cmd:"" help:"Merge line rectangles into outline polygons"`
	Extract ExtractCmd `cmd:"" help:"Extract the text between two identifiers in a book"`
	Verse   VerseCmd   `cmd:"" help:"Query the verse markers of a spine item"`
	Render  RenderCmd  `cmd:"" help:"Render highlight overlays for a range using Chrome"`
	Build   BuildCmd   `cmd:"" help:"Build a book from a JSON description"`
	Bundle  BundleCmd  `cmd:"" help:"Pack an unpacked book directory into a tar bundle"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "cfi: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	ctx = logging.WithSessionID(ctx, logging.NewSessionID())
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("cfi"),
		kong.Description("EPUB canonical fragment identifier toolkit"),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(kong.JSON, "~/.config/cfi/config.json"),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	logging.InitLoggerTo(stderr, logging.ParseLevel(cli.LogLevel), logging.ParseFormat(cli.LogFormat))
	logging.InfoContext(ctx, "command", "name", kctx.Command())
	return kctx.Run()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "cfi version %s\n", version)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
