package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mkvsubs/internal/fileutil"
)

type exportFlags struct {
	dir       string
	overwrite bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "copy-to", "", "Also copy the extracted file into this directory")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace an existing file in the --copy-to directory")
}

// apply copies path into the requested directory; it returns "" when no copy was requested.
func (f *exportFlags) apply(path string) (string, error) {
	dir := strings.TrimSpace(f.dir)
	if dir == "" {
		return "", nil
	}
	copied, err := fileutil.Export(path, dir, f.overwrite)
	if err != nil {
		return "", fmt.Errorf("copy extracted file: %w", err)
	}
	return copied, nil
}

func printExport(cmd *cobra.Command, copied string) {
	if copied != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Copied to %s\n", copied)
	}
}
