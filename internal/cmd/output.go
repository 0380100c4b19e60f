package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dreambundler/CloneWorks/internal/config"
	"github.com/dreambundler/CloneWorks/internal/filelock"
	"github.com/dreambundler/CloneWorks/internal/models"
	"github.com/dreambundler/CloneWorks/internal/parser"
)

// stdinPath names standard input on the command line.
const stdinPath = "-"

// outputOptions are the document output flags shared by plan and render.
type outputOptions struct {
	out     string
	compact bool
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "Write the document to FILE instead of stdout")
	cmd.Flags().Bool("compact", false, "Write single-line JSON")
	cmd.Flags().Bool("pretty", false, "Write indented JSON even when not writing to a terminal")
	cmd.Flags().String("output-dir", "", "Directory that relative --out paths are resolved against")
}

func readOutputOptions(cmd *cobra.Command) outputOptions {
	out, _ := cmd.Flags().GetString("out")
	compact, _ := cmd.Flags().GetBool("compact")
	return outputOptions{out: out, compact: compact}
}

// writeDocument encodes doc as JSON and writes it to stdout or, with --out,
// to a file under a lock. Stdout output is indented when it is a terminal.
func writeDocument(cmd *cobra.Command, cfg *config.Config, opts outputOptions, runLog Logger, doc any) error {
	target := cfg.ResolveOutput(opts.out)
	toStdout := target == "" || target == stdinPath
	out := cmd.OutOrStdout()

	pretty := !opts.compact && (cfg.Pretty || (toStdout && isTerminal(out)))
	data, err := encodeDocument(doc, pretty)
	if err != nil {
		return err
	}

	if toStdout {
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := filelock.WriteDocument(cmd.Context(), target, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	runLog.LogOutputWritten(target, len(data))
	return nil
}

func encodeDocument(doc any, pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(data, '\n'), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// loadRequest decodes the request at path, reading JSON from in for "-".
func loadRequest(in io.Reader, path string) (*models.Request, error) {
	if path == stdinPath {
		return parser.ParseReader(in, parser.FormatJSON)
	}
	return parser.ParseFile(path)
}

// loadPlan decodes the plan document at path, reading from in for "-".
func loadPlan(in io.Reader, path string) (*models.Plan, error) {
	if path == stdinPath {
		return parser.ParsePlan(in)
	}
	return parser.ParsePlanFile(path)
}
