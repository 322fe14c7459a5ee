// Command colstore writes, inspects and queries columnar .col files.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Veezogri/Columnar-Analytics-Engine/internal/datagen"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/config"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/format"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/logger"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/query"
)

var version = "0.1.0"

var (
	cfgPath  string
	logLevel string
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "colstore",
		Short: "Columnar analytics engine",
		Long: `colstore is a self-contained columnar analytics engine. It persists
tabular datasets in a column-oriented binary format with plain, run-length,
delta and dictionary encodings, and executes filtered, aggregated and
grouped scans directly against those files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("colstore v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "write <output.col> <num_rows> [seed]",
		Short: "Generate and write a synthetic dataset",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runWrite,
	})

	root.AddCommand(&cobra.Command{
		Use:   "scan <input.col>",
		Short: "Display file metadata and page statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	})

	queryCmd := &cobra.Command{
		Use:   "query <input.col> [--select c1,c2,...] [--where col op value] [--agg func col] [--groupby col]",
		Short: "Execute a query",
		Long: `Execute a projection, filtered scan, aggregation or group-by.

  --select <c1,c2,...>     project specific columns
  --where <col> <op> <value>  filter rows (op: eq, ne, lt, le, gt, ge); repeatable
  --agg <func> <col>       aggregate (func: count, sum, min, max)
  --groupby <col>          group by column`,
		// The query grammar takes multi-token options, parsed by hand.
		DisableFlagParsing: true,
		RunE:               runQuery,
	}
	root.AddCommand(queryCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the engine config and initializes the global logger.
func setup() error {
	cfg := config.DefaultConfig()
	if cfgPath != "" {
		if err := config.Load(cfgPath, cfg); err != nil {
			return err
		}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
		OutputPaths: []string{"stderr"},
	})
}

func runWrite(cmd *cobra.Command, args []string) error {
	numRows, err := strconv.Atoi(args[1])
	if err != nil || numRows < 0 {
		return fmt.Errorf("invalid row count %q", args[1])
	}

	seed := int64(datagen.DefaultSeed)
	if len(args) == 3 {
		seed, err = strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q", args[2])
		}
	}

	if err := datagen.Generate(args[0], numRows, seed); err != nil {
		return err
	}
	fmt.Printf("Generated %d rows in %s\n", numRows, args[0])
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	reader, err := format.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	meta := reader.Metadata()
	fmt.Printf("File: %s\n", args[0])
	fmt.Printf("Total rows: %d\n", meta.TotalRows)
	fmt.Printf("Row groups: %d\n\n", len(meta.RowGroups))

	fmt.Println("Schema:")
	for _, col := range meta.Schema.Columns {
		fmt.Printf("  - %s (type=%s, encoding=%s)\n", col.Name, col.Type, col.Encoding)
	}

	fmt.Println("\nRow Groups:")
	for i, rg := range meta.RowGroups {
		fmt.Printf("  Row Group %d: %d rows\n", i, rg.NumRows)
		for j, chunk := range rg.Chunks {
			fmt.Printf("    Column %s:\n", meta.Schema.Columns[j].Name)
			fmt.Printf("      Offset: %d\n", chunk.FileOffset)
			fmt.Printf("      Size: %d bytes\n", chunk.TotalSize)
			for k, page := range chunk.Pages {
				fmt.Printf("      Page %d: %d values, %d bytes", k, page.NumValues, page.CompressedSize)
				if page.Stats.HasMin && page.Stats.HasMax {
					fmt.Printf(", min=%d, max=%d", page.Stats.Min, page.Stats.Max)
				}
				fmt.Println()
			}
		}
	}
	return nil
}

// queryOptions is the parsed form of the query grammar.
type queryOptions struct {
	input      string
	projection []string
	filters    []query.Predicate
	aggFunc    query.AggFunc
	aggColumn  string
	hasAgg     bool
	groupBy    string
}

func parseQueryArgs(args []string) (*queryOptions, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("query requires an input file")
	}

	opts := &queryOptions{input: args[0]}
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--select":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--select requires a column list")
			}
			for _, col := range strings.Split(args[i+1], ",") {
				if col != "" {
					opts.projection = append(opts.projection, col)
				}
			}
			i++

		case "--where":
			if i+3 >= len(args) {
				return nil, fmt.Errorf("--where requires <column> <op> <value>")
			}
			op, err := query.ParseCompareOp(args[i+2])
			if err != nil {
				return nil, err
			}
			value, err := strconv.ParseInt(args[i+3], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid filter value %q", args[i+3])
			}
			opts.filters = append(opts.filters, query.Predicate{
				Column: args[i+1], Op: op, Value: value,
			})
			i += 3

		case "--agg":
			if i+2 >= len(args) {
				return nil, fmt.Errorf("--agg requires <func> <column>")
			}
			fn, err := query.ParseAggFunc(args[i+1])
			if err != nil {
				return nil, err
			}
			opts.aggFunc = fn
			opts.aggColumn = args[i+2]
			opts.hasAgg = true
			i += 2

		case "--groupby":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--groupby requires a column")
			}
			opts.groupBy = args[i+1]
			i++

		case "--help", "-h":
			return nil, nil

		default:
			return nil, fmt.Errorf("unknown query option %q", args[i])
		}
	}
	return opts, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	opts, err := parseQueryArgs(args)
	if err != nil {
		return err
	}
	if opts == nil {
		return cmd.Help()
	}

	reader, err := format.NewReader(opts.input)
	if err != nil {
		return err
	}
	defer reader.Close()

	executor := query.NewExecutor(reader)
	if len(opts.projection) > 0 {
		executor.SetProjection(opts.projection)
	}
	for _, pred := range opts.filters {
		executor.AddFilter(pred)
	}
	if opts.hasAgg {
		if err := executor.SetAggregation(opts.aggFunc, opts.aggColumn); err != nil {
			return err
		}
	}
	if opts.groupBy != "" {
		if err := executor.SetGroupBy(opts.groupBy); err != nil {
			return err
		}
	}

	switch {
	case opts.groupBy != "":
		return printGroupBy(executor, opts)
	case opts.hasAgg:
		return printAggregate(executor, opts)
	default:
		return printRows(executor)
	}
}

func printGroupBy(executor *query.Executor, opts *queryOptions) error {
	results, err := executor.ExecuteGroupBy()
	if err != nil {
		return err
	}

	fmt.Printf("GROUP BY %s:\n", opts.groupBy)
	for _, group := range results {
		fmt.Printf("  %s: count=%d", group.Key, group.Agg.Count)
		if opts.hasAgg && opts.aggFunc == query.AggSum {
			fmt.Printf(", sum=%d", group.Agg.Sum)
		}
		if opts.hasAgg && opts.aggFunc == query.AggMin && group.Agg.HasMin {
			fmt.Printf(", min=%d", group.Agg.Min)
		}
		if opts.hasAgg && opts.aggFunc == query.AggMax && group.Agg.HasMax {
			fmt.Printf(", max=%d", group.Agg.Max)
		}
		fmt.Println()
	}
	return nil
}

func printAggregate(executor *query.Executor, opts *queryOptions) error {
	result, err := executor.ExecuteAggregate()
	if err != nil {
		return err
	}

	fmt.Println("Aggregation result:")
	fmt.Printf("  count: %d\n", result.Count)
	if opts.aggFunc != query.AggCount {
		fmt.Printf("  sum: %d\n", result.Sum)
		if result.HasMin {
			fmt.Printf("  min: %d\n", result.Min)
		}
		if result.HasMax {
			fmt.Printf("  max: %d\n", result.Max)
		}
	}
	return nil
}

// printRows reports the match count and, for small results, dumps the rows
// as JSON lines.
func printRows(executor *query.Executor) error {
	batches, err := executor.ExecuteQuery()
	if err != nil {
		return err
	}

	totalRows := 0
	for _, batch := range batches {
		totalRows += batch.NumRows
	}
	fmt.Printf("Query returned %d rows in %d batches\n", totalRows, len(batches))

	const dumpLimit = 20
	if totalRows == 0 || totalRows > dumpLimit {
		return nil
	}

	fmt.Println("\nFirst rows:")
	enc := gojson.NewEncoder(os.Stdout)
	for _, batch := range batches {
		for row := 0; row < batch.NumRows; row++ {
			record := make(map[string]interface{}, len(batch.Names))
			for col, name := range batch.Names {
				data := &batch.Columns[col]
				switch data.Type {
				case format.TypeInt32:
					record[name] = data.Int32s[row]
				case format.TypeInt64:
					record[name] = data.Int64s[row]
				case format.TypeString:
					record[name] = data.Strings[row]
				}
			}
			if err := enc.Encode(record); err != nil {
				return err
			}
		}
	}
	return nil
}
