package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/spf13/cobra"
)

var (
	importSheet    string
	exportOutput   string
	exportArchived bool
	clearYes       bool
	listSearch     string
	listArchived   bool
)

var (
	importCmd = &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import components from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := lib.Services.Import.ImportFile(cmd.Context(), args[0], importSheet)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sheet %q: imported %d, skipped %d\n",
				summary.Sheet, summary.Imported, summary.Skipped)
			for _, e := range summary.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  row %d: %s\n", e.Row, e.Reason)
			}
			return nil
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export components to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, name, err := lib.Services.Export.Export(cmd.Context(), exportArchived)
			if err != nil {
				return err
			}
			defer f.Close()
			if exportOutput != "" {
				name = exportOutput
			}
			if err := f.SaveAs(name); err != nil {
				return fmt.Errorf("save %s: %w", name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every record and stored file (irreversible)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearYes {
				return errors.New("refusing to clear the library without --yes")
			}
			res, err := lib.Services.Library.ClearAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"removed %d components, %d edges, %d files, %d suppliers, %d materials, %d requirements, %d stored objects\n",
				res.Components, res.HierarchyEdges, res.Files, res.Suppliers, res.Materials, res.Requirements, res.StoredObjects)
			return nil
		},
	}

	valueCmd = &cobra.Command{
		Use:   "value",
		Short: "Print the total inventory value",
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := lib.Services.Library.TotalValue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), total.StringFixed(2))
			return nil
		},
	}

	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Print record counts and total value",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lib.Services.Library.Summary(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "components\t%d\n", s.Components)
			fmt.Fprintf(w, "archived components\t%d\n", s.ArchivedComponents)
			fmt.Fprintf(w, "hierarchy edges\t%d\n", s.HierarchyEdges)
			fmt.Fprintf(w, "suppliers\t%d\n", s.Suppliers)
			fmt.Fprintf(w, "files\t%d\n", s.Files)
			fmt.Fprintf(w, "materials\t%d\n", s.Materials)
			fmt.Fprintf(w, "requirements\t%d\n", s.Requirements)
			fmt.Fprintf(w, "total value\t%s\n", s.TotalValue)
			return w.Flush()
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List components",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, total, err := lib.Services.Component.List(cmd.Context(), repository.ComponentFilter{
				ListFilter: repository.ListFilter{
					Search:          listSearch,
					IncludeArchived: listArchived,
					Page:            1,
					PageSize:        500,
				},
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tNAME\tSTATE\tQTY\tUNIT PRICE\tARCHIVED")
			for _, c := range items {
				price := "-"
				if c.UnitPrice.Valid {
					price = c.UnitPrice.Decimal.StringFixed(2) + " " + c.Currency
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\n", c.Number, c.Name, c.LifecycleState, c.Quantity, price, c.Archived)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if int64(len(items)) < total {
				fmt.Fprintf(os.Stderr, "showing %d of %d\n", len(items), total)
			}
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert sample supplier and components",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lib.Services.Library.SeedSample(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sample data created")
			return nil
		},
	}
)
