package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/atomic77/esfilter/pkg/dsl"
	"github.com/atomic77/esfilter/pkg/mapping"
	"github.com/atomic77/esfilter/pkg/store"
	"github.com/atomic77/esfilter/pkg/transform"
)

type translateOptions struct {
	Profile    string
	Collection string
	Dump       bool
	Strict     bool
}

func newTranslateCommand(root *rootOptions) *cobra.Command {
	opts := &translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate [request.json]",
		Short: "Translate a search request read from a file or stdin",
		Long: `Translate an Elasticsearch search body into Typesense search parameters.

The field mapping comes from a profile file (--profile) or from the profile
stored for a collection (--collection). Warnings are part of the output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "profile file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.Collection, "collection", "c", "", "use the stored profile of this collection")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "print the decoded request to stderr")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when the translation produced warnings")
	return cmd
}

var errWarnings = errors.New("translation produced warnings")

func runTranslate(cmd *cobra.Command, root *rootOptions, opts *translateOptions, args []string) error {
	p, err := loadProfile(cmd.Context(), root, opts)
	if err != nil {
		return err
	}
	tr, err := transform.FromProfile(p)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	req, err := dsl.Parse(b)
	if err != nil {
		return err
	}
	if opts.Dump {
		fmt.Fprintln(cmd.ErrOrStderr(), repr.String(req, repr.Indent("  ")))
	}

	res := tr.TranslateRequest(req)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if opts.Strict && len(res.Warnings) > 0 {
		return errWarnings
	}
	return nil
}

func loadProfile(ctx context.Context, root *rootOptions, opts *translateOptions) (*mapping.Profile, error) {
	switch {
	case opts.Profile != "" && opts.Collection != "":
		return nil, errors.New("--profile and --collection are mutually exclusive")
	case opts.Profile != "":
		return mapping.LoadFile(opts.Profile)
	case opts.Collection != "":
		st, err := store.Open(root.DbLocation)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Get(ctx, opts.Collection)
	}
	return nil, errors.New("one of --profile or --collection is required")
}
