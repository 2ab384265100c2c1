package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// batchLine is one expression read from a batch file.
type batchLine struct {
	no   int
	text string
}

func (a *app) batchCmd() *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Reduce one expression per line, in parallel",
		Long: `Reduce every non-empty line of FILE (or stdin for "-") and print
"input => result" lines in input order. Lines starting with # are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open batch file: %w", err)
				}
				defer f.Close()
				in = f
			}
			lines, err := readBatch(in)
			if err != nil {
				return err
			}
			results, err := a.reduceAll(cmd.Context(), lines, jobs)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, l := range lines {
				fmt.Fprintf(w, "%s => %s\n", l.text, results[i])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Maximum concurrent reductions")
	return cmd
}

func readBatch(r io.Reader) ([]batchLine, error) {
	var lines []batchLine
	sc := bufio.NewScanner(r)
	for no := 1; sc.Scan(); no++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, batchLine{no: no, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	return lines, nil
}

// reduceAll reduces lines concurrently on the shared engine. The first
// failure cancels the remaining work.
func (a *app) reduceAll(ctx context.Context, lines []batchLine, jobs int) ([]string, error) {
	results := make([]string, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, l := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := reduceText(a.eng, l.text, false)
			if err != nil {
				return fmt.Errorf("line %d: %w", l.no, err)
			}
			logReduction(a.logger, r)
			results[i] = r.out.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
