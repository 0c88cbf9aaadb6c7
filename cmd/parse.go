package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/emersion/go-mbox"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vibast-solutions/ms-go-bounces/app/engine"
	"github.com/vibast-solutions/ms-go-bounces/app/preparer"
	"github.com/vibast-solutions/ms-go-bounces/app/service"
	"github.com/vibast-solutions/ms-go-bounces/config"
)

type parseOptions struct {
	mbox     bool
	workers  int
	format   string
	adapters string
}

var parseOpts parseOptions

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse bounce mails from files",
	Long:  "Parse .eml files or mbox archives and print the delivery records. A file named - reads standard input.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := parseOpts
		if opts.adapters == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.adapters = cfg.AdaptersFile
		}
		return runParse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts, args)
	},
}

// init registers the parse command.
func init() {
	parseCmd.Flags().BoolVar(&parseOpts.mbox, "mbox", false, "treat every file as an mbox archive")
	parseCmd.Flags().IntVar(&parseOpts.workers, "workers", 4, "number of messages parsed in parallel")
	parseCmd.Flags().StringVar(&parseOpts.format, "format", "json", "output format: json or text")
	parseCmd.Flags().StringVar(&parseOpts.adapters, "adapters", "", "JSON file with extra adapter definitions")
	rootCmd.AddCommand(parseCmd)
}

// parseInput is one message read from a file or an mbox entry.
type parseInput struct {
	source string
	raw    []byte
}

type parseOutput struct {
	Source       string         `json:"source"`
	Unrecognized bool           `json:"unrecognized,omitempty"`
	Result       *engine.Result `json:"result,omitempty"`
}

func runParse(ctx context.Context, stdin io.Reader, out io.Writer, opts parseOptions, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.format != "json" && opts.format != "text" {
		return fmt.Errorf("unsupported format: %s", opts.format)
	}
	if opts.workers < 1 {
		opts.workers = 1
	}

	registry, err := buildRegistry(opts.adapters)
	if err != nil {
		return fmt.Errorf("load adapters: %w", err)
	}
	// Only Parse is used, so no storage backends are wired.
	svc := service.NewBounceService(preparer.Default(), registry, nil, nil, nil, nil, nil)

	var inputs []parseInput
	for _, path := range paths {
		read, err := readInputs(stdin, path, opts.mbox)
		if err != nil {
			return err
		}
		inputs = append(inputs, read...)
	}

	results := make([]parseOutput, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := svc.Parse(gctx, in.raw)
			switch {
			case errors.Is(err, service.ErrUnrecognized):
				results[i] = parseOutput{Source: in.source, Unrecognized: true}
			case err != nil:
				return fmt.Errorf("%s: %w", in.source, err)
			default:
				results[i] = parseOutput{Source: in.source, Result: res}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.format == "text" {
		return writeText(out, results)
	}
	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func readInputs(stdin io.Reader, path string, isMbox bool) ([]parseInput, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if !isMbox {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return []parseInput{{source: path, raw: data}}, nil
	}

	var inputs []parseInput
	reader := mbox.NewReader(r)
	for n := 1; ; n++ {
		msg, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s message %d: %w", path, n, err)
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, msg); err != nil {
			return nil, fmt.Errorf("read %s message %d: %w", path, n, err)
		}
		inputs = append(inputs, parseInput{source: fmt.Sprintf("%s#%d", path, n), raw: buf.Bytes()})
	}
	return inputs, nil
}

func writeText(out io.Writer, results []parseOutput) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tADAPTER\tRECIPIENT\tREASON\tSTATUS\tREPLY\tDIAGNOSIS")
	for _, r := range results {
		if r.Unrecognized {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\tnot a bounce\n", r.Source)
			continue
		}
		for _, rec := range r.Result.Records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Source, r.Result.Adapter, rec.Recipient, rec.Reason, rec.Status, dash(rec.ReplyCode), oneLine(rec.Diagnosis))
		}
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
