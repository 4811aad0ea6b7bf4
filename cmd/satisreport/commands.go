package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/feedbackdash/internal/dashboard"
)

type renderFunc func(*dashboard.Service, context.Context, dashboard.Request) (*dashboard.File, error)

func newRenderCommand(f *rootFlags, use, short string, render renderFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}
			svc, closeFn, err := f.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			file, err := render(svc, cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeFile(cmd.OutOrStdout(), f.out, file)
		},
	}
	cmd.Flags().StringVarP(&f.out, "out", "o", "", `output path or directory; "-" writes to stdout (default: the report's file name)`)
	return cmd
}

// writeFile saves file to out. An empty out uses the file's own name in the
// working directory; a directory receives the file under its own name.
func writeFile(stdout io.Writer, out string, file *dashboard.File) error {
	if out == "-" {
		_, err := stdout.Write(file.Data)
		return err
	}
	path := out
	if path == "" {
		path = file.Name
	} else if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, file.Name)
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(stdout, path)
	return nil
}

func newSummaryCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the aggregated answers as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}
			svc, closeFn, err := f.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			sum, err := svc.Summary(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
}

func newPeriodsCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the months with responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := f.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			list, err := svc.Periods(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, p := range list.Periods {
				mark := ""
				if p == list.Default {
					mark = " *"
				}
				fmt.Fprintf(w, "%d-%02d %s%s\n", p.Year, int(p.Month), p, mark)
			}
			return nil
		},
	}
}

func newQuestionsCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the questions of the form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := f.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			qs, err := svc.Questions(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, q := range qs {
				fmt.Fprintf(w, "%2d  %s\t%s\n", q.Position, q.Area, q.Title)
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
