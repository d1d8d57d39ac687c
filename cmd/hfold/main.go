// Command hfold applies a horizontal reduction across the columns of a
// Parquet file and prints the result as a table.
//
//	hfold -op sum -ignore-nulls -cols a,b,c data.parquet
//	hfold -op max -explain data.parquet
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/NerdMeNot/galleon/dsl"
)

var (
	opFlag      = flag.String("op", "sum", "Horizontal operation: all, any, max, min, sum, mean, coalesce")
	colsFlag    = flag.String("cols", "*", "Comma-separated input columns, or * for every column")
	ignoreNulls = flag.Bool("ignore-nulls", true, "Skip nulls in sum and mean")
	keepFlag    = flag.Bool("keep", false, "Keep the input columns next to the result")
	limitFlag   = flag.Int("limit", 0, "Limit number of rows read (0 = unlimited)")
	rowsFlag    = flag.Int("rows", 10, "Maximum rows to display")
	explainFlag = flag.Bool("explain", false, "Print the optimized expression plan as JSON instead of data")
	verboseFlag = flag.Bool("v", false, "Log evaluation details to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.parquet>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "hfold: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	if *verboseFlag {
		cfg := dsl.DefaultEvalConfig()
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		dsl.SetEvalConfig(cfg)
	}

	frame, err := dsl.ReadParquet(path, dsl.ParquetReadOptions{MaxRows: *limitFlag})
	if err != nil {
		return err
	}

	expr, err := buildExpr(*opFlag, inputExprs(*colsFlag), *ignoreNulls)
	if err != nil {
		return err
	}

	optimized, err := dsl.Optimize(frame.Schema(), expr)
	if err != nil {
		return err
	}

	if *explainFlag {
		for _, e := range optimized {
			out, err := dsl.ExplainJSON(e, frame.Schema())
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
		return nil
	}

	var result *dsl.Frame
	if *keepFlag {
		result, err = frame.WithColumns(ctx, optimized...)
	} else {
		result, err = frame.Select(ctx, optimized...)
	}
	if err != nil {
		return err
	}

	display := dsl.GetDisplayConfig()
	display.MaxRows = *rowsFlag
	result.Render(os.Stdout, display)
	return nil
}

func inputExprs(cols string) []dsl.Expr {
	if strings.TrimSpace(cols) == "*" {
		return []dsl.Expr{dsl.All()}
	}
	var names []string
	for _, name := range strings.Split(cols, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return []dsl.Expr{dsl.Cols(names...)}
}

func buildExpr(op string, inputs []dsl.Expr, ignoreNulls bool) (dsl.Expr, error) {
	switch strings.ToLower(op) {
	case "all":
		return dsl.AllHorizontal(inputs...)
	case "any":
		return dsl.AnyHorizontal(inputs...)
	case "max":
		return dsl.MaxHorizontal(inputs...)
	case "min":
		return dsl.MinHorizontal(inputs...)
	case "sum":
		return dsl.SumHorizontal(ignoreNulls, inputs...)
	case "mean":
		return dsl.MeanHorizontal(ignoreNulls, inputs...)
	case "coalesce":
		return dsl.Coalesce(inputs...), nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}
