package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// maxInputSize bounds the size of a single invoice file read from disk.
const maxInputSize = 20 << 20

// readInputFile checks that path is a non-empty regular file and returns its contents.
func readInputFile(path, ext string, log zerolog.Logger) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("Input file not found")
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", path).Msg("Permission denied accessing input file")
			return nil, fmt.Errorf("permission denied accessing input file: %s", path)
		}
		return nil, fmt.Errorf("error accessing input file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ext) {
		log.Warn().Str("file", path).Msgf("File does not have %s extension", ext)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("input file is empty: %s", path)
	}
	if info.Size() > maxInputSize {
		return nil, fmt.Errorf("input file too large (%d bytes), maximum is %d bytes", info.Size(), maxInputSize)
	}

	return os.ReadFile(path)
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(data []byte, path string, log zerolog.Logger) error {
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error().Err(err).Str("output_file", path).Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output_file", path).Int("bytes", len(data)).Msg("Output written to file")
	return nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM or after timeout (0 = none).
func signalContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			log.Warn().Msg("Received interrupt signal, cancelling")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// findFiles lists the files below folder whose name ends in ext, in lexical order.
func findFiles(folder, ext string) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %s", folder)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", folder)
	}

	var files []string
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ext) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
