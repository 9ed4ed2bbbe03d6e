// Command analyze runs the full decision pipeline on a CSV or XLSX file and
// prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"ablab/adapters/csvsource"
	"ablab/adapters/excel"
	"ablab/app"
	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal"
	"ablab/ports"
)

func main() {
	var (
		file        = flag.String("file", "", "CSV or XLSX file to analyze (required)")
		groupCol    = flag.String("group", "", "group column name (required)")
		targetCol   = flag.String("target", "", "numeric target column name (required)")
		alpha       = flag.Float64("alpha", analysis.DefaultAlpha, "significance level")
		resamples   = flag.Int("resamples", analysis.DefaultResamples, "bootstrap resample count")
		correlation = flag.Bool("correlation", false, "run the two-group correlation analysis")
		association = flag.Bool("association", false, "run the categorical association test")
		seed        = flag.Int64("seed", 0, "bootstrap seed (0 seeds from the clock)")
	)
	flag.Parse()

	if *file == "" || *groupCol == "" || *targetCol == "" {
		flag.Usage()
		os.Exit(2)
	}

	godotenv.Load()

	session := app.NewSession(internal.NewDefaultLogger())
	if *seed != 0 {
		session.Seed(*seed)
	}

	var reader ports.TableReader
	if strings.EqualFold(filepath.Ext(*file), ".xlsx") {
		reader = excel.NewReader(*file)
	} else {
		reader = fileReader{path: *file}
	}
	if _, err := session.Load(reader); err != nil {
		log.Fatalf("Failed to load %s: %v", *file, err)
	}

	if err := session.SetParams(analysis.Params{
		Alpha:       *alpha,
		Resamples:   *resamples,
		Correlation: *correlation,
		Association: *association,
	}); err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}
	if err := session.SelectColumns(*groupCol, *targetCol); err != nil {
		log.Fatalf("Column selection failed: %v", err)
	}

	report, err := session.Run(context.Background())
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
	fmt.Println(string(out))
}

// fileReader adapts a CSV path to the TableReader port
type fileReader struct {
	path string
}

func (f fileReader) Read() (*dataset.Dataset, error) {
	return csvsource.ReadFile(f.path)
}
