package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/cxxcorpus/internal/config"
	"github.com/dshills/cxxcorpus/internal/corpus"
	"github.com/dshills/cxxcorpus/internal/discovery"
	"github.com/dshills/cxxcorpus/internal/overloads"
	"github.com/dshills/cxxcorpus/internal/storage"
	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// errNotIndexed is returned by query commands run before index
var errNotIndexed = errors.New("project not indexed, run \"cxxcorpus index\" first")

// openCorpus loads the stored corpus of the project at dir
func openCorpus(ctx context.Context, cfg *config.Config, dir string) (*corpus.Corpus, func(), error) {
	store, err := cfg.OpenStorage()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = store.Close() }

	project, c, err := discovery.New(store).CorpusAt(ctx, dir)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && project.LastIndexedAt.IsZero()) {
		closeFn()
		return nil, nil, fmt.Errorf("%s: %w", dir, errNotIndexed)
	}
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}

// resolve finds the entities addressed by an identity or a qualified name
func resolve(c *corpus.Corpus, ref string, kind metadata.InfoKind) []metadata.Entity {
	if id, err := metadata.ParseSymbolID(ref); err == nil {
		if e, ok := c.Lookup(id); ok && (kind == metadata.KindDefault || e.TypeID() == kind) {
			return []metadata.Entity{e}
		}
		return nil
	}
	return c.FindQualified(ref, kind)
}

func newOverloadsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "overloads <dir> [namespace]",
		Short: "List the overload sets of a namespace",
		Long: `Overloads prints the functions of a namespace grouped into overload
sets: functions whose names are equal ignoring ASCII case. The namespace is a
qualified name or an identity and defaults to the global namespace.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(args[0])
			if err != nil {
				return err
			}
			c, closeFn, err := openCorpus(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			nsID := metadata.GlobalNamespaceID
			if len(args) == 2 && args[1] != "::" {
				matches := resolve(c, args[1], metadata.KindNamespace)
				switch len(matches) {
				case 0:
					return fmt.Errorf("namespace %q: %w", args[1], metadata.ErrNotFound)
				case 1:
					nsID = matches[0].Base().ID
				default:
					return fmt.Errorf("namespace %q is ambiguous (%d matches), use an id", args[1], len(matches))
				}
			}

			x, err := overloads.New(c, cfg.Cache.OverloadEntries)
			if err != nil {
				return err
			}
			ov, err := x.Namespace(nsID)
			if err != nil {
				return err
			}

			ns, _ := c.Lookup(nsID)
			label := c.QualifiedName(ns)
			if label == "" {
				label = "::"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "namespace %s: %d functions in %d overload sets\n", label, len(ov.Data), ov.Len())
			for _, set := range ov.List {
				fmt.Fprintf(out, "\n%s\n", set.Name)
				for _, fn := range set.Functions {
					fmt.Fprintf(out, "  %s", fn.Signature())
					if loc := fn.DefLoc; loc != nil {
						fmt.Fprintf(out, "  // %s:%d", loc.File, loc.Line)
					}
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
}

func newSymbolCmd(opts *options) *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "symbol <dir> <name|id>",
		Short: "Print the stored metadata of a symbol as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := metadata.KindDefault
			if kindName != "" {
				k, err := metadata.ParseInfoKind(kindName)
				if err != nil {
					return err
				}
				kind = k
			}

			cfg, err := opts.load(args[0])
			if err != nil {
				return err
			}
			c, closeFn, err := openCorpus(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			matches := resolve(c, args[1], kind)
			if len(matches) == 0 {
				return fmt.Errorf("%q: %w", args[1], metadata.ErrNotFound)
			}

			type symbolOutput struct {
				QualifiedName string          `json:"qualified_name"`
				Signature     string          `json:"signature,omitempty"`
				Entity        metadata.Entity `json:"entity"`
			}
			outputs := make([]symbolOutput, len(matches))
			for i, e := range matches {
				outputs[i] = symbolOutput{QualifiedName: c.QualifiedName(e), Entity: e}
				if fn, ok := e.(*metadata.FunctionInfo); ok {
					outputs[i].Signature = fn.Signature()
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(outputs)
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "", "restrict matches to one kind (namespace, record, function, ...)")
	return cmd
}
