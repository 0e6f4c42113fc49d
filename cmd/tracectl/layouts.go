package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goliatone/go-traceability/components/traceability/queries"
)

type layoutsCmd struct {
	Manifest []string `type:"existingfile" help:"Extra layout manifests to load (repeatable, added to layouts.manifests)."`
	Locale   string   `default:"en" help:"Locale used for labels."`
	JSON     bool     `name:"json" help:"Print JSON instead of a table."`
}

func (cmd *layoutsCmd) Run(ctx context.Context, g *globals) error {
	manifests := append(append([]string(nil), g.cfg.Layouts.Manifests...), cmd.Manifest...)
	registry, err := loadRegistry(ctx, manifests, nil)
	if err != nil {
		return err
	}
	layouts, err := queries.NewLayoutsQuery(registry).Query(ctx, queries.LayoutsInput{Locale: cmd.Locale})
	if err != nil {
		return err
	}
	return cmd.print(stdout(), layouts)
}

func (cmd *layoutsCmd) print(out io.Writer, layouts []queries.LayoutSummary) error {
	if cmd.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(layouts)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tCERTIFICATIONS\tSUPPLY CHAIN\tCOLLAPSIBLE")
	for _, layout := range layouts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", layout.Code, layout.Name, layout.Certifications, layout.SupplyChain, layout.Collapsible)
	}
	return w.Flush()
}
