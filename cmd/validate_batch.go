package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"einvoice/internal/config"
	"einvoice/internal/logger"
	"einvoice/internal/summary"
	"einvoice/internal/validation"
	"einvoice/internal/xmltree"
)

var validateBatchCmd = &cobra.Command{
	Use:   "validate-batch <folder>",
	Short: "Validate every XML invoice in a folder",
	Long: `Validate all .xml files below a folder in parallel.

Progress is printed per file and a summary is shown at the end. With -o the
per-file results are also written as JSON. The number of workers defaults to
BATCH_WORKERS, or the number of CPUs.

Example:
  einvoice validate-batch ./invoices
  einvoice validate-batch ./invoices --workers 8 -o results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateBatch,
}

var (
	batchWorkers int
	batchOutput  string
)

func init() {
	rootCmd.AddCommand(validateBatchCmd)
	validateBatchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Number of parallel workers (default: BATCH_WORKERS)")
	validateBatchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Write per-file results as JSON to this file")
}

// fileJob is a unit of work for the batch worker pool.
type fileJob struct {
	Index int
	Path  string
}

// fileResult is the validation outcome of one file.
type fileResult struct {
	File     string          `json:"file"`
	Valid    bool            `json:"valid"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Summary  summary.Summary `json:"summary"`
	Err      string          `json:"readError,omitempty"`
}

func runValidateBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate-batch")
	folder := args[0]

	files, err := findFiles(folder, ".xml")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No XML files found in %s\n", folder)
		return nil
	}

	workers, err := resolveWorkers(batchWorkers)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d XML file(s) in %s\n", len(files), folder)
	fmt.Printf("Processing with %d worker(s)...\n\n", workers)

	ctx, cancel := signalContext(0, log)
	defer cancel()

	results := validateFiles(ctx, files, workers, log)
	printBatchSummary(results)

	if batchOutput != "" {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		if err := writeOutput(out, batchOutput, log); err != nil {
			return err
		}
	}

	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) are not valid", invalid, len(results))
	}
	return nil
}

// resolveWorkers returns flag when positive, otherwise the configured worker count.
func resolveWorkers(flag int) (int, error) {
	if flag > 0 {
		return flag, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.BatchWorkers, nil
}

// validateFiles validates files with a fixed pool of workers.
// Results are returned in the order of files.
func validateFiles(ctx context.Context, files []string, workers int, log zerolog.Logger) []fileResult {
	jobs := make(chan fileJob, len(files))
	results := make([]fileResult, len(files))
	validator := validation.NewValidator()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res := validateFile(ctx, validator, job.Path)
				results[job.Index] = res

				mu.Lock()
				processed++
				status := "valid"
				switch {
				case res.Err != "":
					status = "failed: " + res.Err
				case !res.Valid:
					status = fmt.Sprintf("invalid (%d error(s))", len(res.Errors))
				}
				fmt.Printf("[%d/%d] %s - %s\n", processed, len(files), filepath.Base(job.Path), status)
				mu.Unlock()

				log.Debug().
					Str("file", job.Path).
					Bool("valid", res.Valid).
					Msg("File validated")
			}
		}()
	}

	for i, f := range files {
		jobs <- fileJob{Index: i, Path: f}
	}
	close(jobs)
	wg.Wait()

	return results
}

func validateFile(ctx context.Context, v *validation.Validator, path string) fileResult {
	res := fileResult{File: path}
	if err := ctx.Err(); err != nil {
		res.Err = err.Error()
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	root := xmltree.Parse(string(data))
	result := v.ValidateTree(root)
	res.Valid = result.Valid
	res.Errors = result.Errors
	res.Warnings = result.Warnings
	if root != nil {
		res.Summary = summary.FromTree(root)
	}
	return res
}

func printBatchSummary(results []fileResult) {
	var valid, invalid, failed, warnings int
	for _, r := range results {
		switch {
		case r.Err != "":
			failed++
		case r.Valid:
			valid++
		default:
			invalid++
		}
		warnings += len(r.Warnings)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("BATCH VALIDATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total files:    %d\n", len(results))
	fmt.Printf("Valid:          %d\n", valid)
	fmt.Printf("Invalid:        %d\n", invalid)
	fmt.Printf("Failed to read: %d\n", failed)
	fmt.Printf("Warnings:       %d\n", warnings)

	if invalid > 0 {
		fmt.Println("\nInvalid files:")
		for _, r := range results {
			if r.Err != "" || r.Valid {
				continue
			}
			fmt.Printf("  %s\n", r.File)
			for _, msg := range r.Errors {
				fmt.Printf("    - %s\n", msg)
			}
		}
	}
}
