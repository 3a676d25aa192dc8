// dtinspect loads a decision table from YAML, indexes it and prints the
// index and the analysis report.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ezachrisen/dtanalysis"
	"github.com/ezachrisen/dtanalysis/index"
	"github.com/pkg/errors"
)

func main() {
	if err := run(os.Stdout, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(stdout io.Writer, args []string) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.Usage = func() {
		fmt.Fprintln(stdout, args[0]+` usage:
	dtinspect -f table.yaml [-check] [-index] [-row n] [-select "header=value"]`)
	}

	var (
		file    = flags.String("f", "", "decision table YAML file")
		check   = flags.Bool("check", true, "report redundant and conflicting rows")
		showIdx = flags.Bool("index", false, "print the key index")
		row     = flags.Int("row", -1, "print the inspector of the row")
		sel     = flags.String("select", "", "print the rows whose column (by header) holds the value")
		v       = flags.Bool("v", false, "produce verbose output")
	)
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("missing table file")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return errors.Wrap(err, "reading table")
	}
	t, err := dtanalysis.ParseTable(data)
	if err != nil {
		return errors.Wrapf(err, "loading %s", *file)
	}

	level := slog.LevelWarn
	if *v {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cache, err := dtanalysis.NewRuleInspectorCache(t, nil, dtanalysis.WithLogger(logger))
	if err != nil {
		return errors.Wrapf(err, "indexing %s", *file)
	}
	fmt.Fprintf(stdout, "%s: %s rows, %s columns, %s index definitions\n", t.Name,
		humanize.Comma(int64(t.Rows())), humanize.Comma(int64(len(t.Columns))),
		humanize.Comma(int64(len(cache.Index().Definitions()))))

	fmt.Fprintln(stdout, cache)
	if *showIdx {
		fmt.Fprintln(stdout, cache.Index())
	}
	if *row >= 0 {
		ri, err := cache.Row(*row)
		if err != nil {
			return errors.Wrap(err, "inspecting row")
		}
		fmt.Fprintln(stdout, ri)
	}
	if *sel != "" {
		if err := selectRows(stdout, cache, *sel); err != nil {
			return err
		}
	}
	if *check {
		report := cache.Check()
		fmt.Fprintln(stdout, report)
		fmt.Fprintf(stdout, "%s found\n", humanize.Comma(int64(len(report))))
	}
	return nil
}

// selectRows prints the rows selected by an expression of the form
// header=value.
func selectRows(w io.Writer, cache *dtanalysis.RuleInspectorCache, expr string) error {
	header, raw, ok := strings.Cut(expr, "=")
	if !ok {
		return errors.Errorf("bad select expression %q, want header=value", expr)
	}
	header, raw = strings.TrimSpace(header), strings.TrimSpace(raw)

	for _, col := range cache.Columns() {
		if !strings.EqualFold(col.Header, header) {
			continue
		}
		k, err := cache.CellKey(col, raw)
		if err != nil {
			return errors.Wrapf(err, "converting %q for column %s", raw, col.Header)
		}
		if k.IsEmpty() {
			return errors.Errorf("column %s is not indexed", col.Header)
		}
		seen := map[int]bool{}
		for _, val := range k.Values() {
			for _, ri := range cache.Select(index.Exact(k.Definition(), val, false)).All() {
				seen[ri.RowIndex()] = true
			}
		}
		var rows []string
		for _, r := range slices.Sorted(maps.Keys(seen)) {
			rows = append(rows, strconv.Itoa(r))
		}
		fmt.Fprintf(w, "%s = %s: rows [%s]\n", col.Header, raw, strings.Join(rows, ", "))
		return nil
	}
	return errors.Errorf("no column %q", header)
}
