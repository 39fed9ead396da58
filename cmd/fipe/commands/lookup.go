package commands

import (
	"context"
	"fmt"

	"fipe/consulta/internal/cascade"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/view"

	"github.com/spf13/cobra"
)

// walk drives the resolver through path: category, then brand, then model.
func walk(ctx context.Context, r *cascade.Resolver, path []string) error {
	category, err := domain.ParseVehicleCategory(path[0])
	if err != nil {
		return err
	}
	if err := r.SelectCategory(ctx, category); err != nil {
		return err
	}
	if len(path) > 1 {
		if err := r.SelectBrand(ctx, path[1]); err != nil {
			return err
		}
	}
	if len(path) > 2 {
		if err := r.SelectModel(ctx, path[2]); err != nil {
			return err
		}
	}
	return nil
}

// newListCmd builds brands, models and years: each walks the cascade down to
// its tier and prints that tier's options.
func newListCmd(o *options, use, short string, depth int, pick func(cascade.Snapshot) cascade.SelectorState) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(depth),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := o.container.App.Resolver
			err := walk(cmd.Context(), resolver, args)
			o.report(cmd)
			if err != nil {
				return err
			}

			options := pick(resolver.Snapshot()).Options
			printOptions(cmd.OutOrStdout(), view.FilterOptions(options, filter))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only list names containing this text, ignoring accents and case")
	return cmd
}

func newBrandsCmd(o *options) *cobra.Command {
	return newListCmd(o, "brands <category>", "Lists the brands of a vehicle category (carros, motos, caminhoes).", 1,
		func(s cascade.Snapshot) cascade.SelectorState { return s.Brand })
}

func newModelsCmd(o *options) *cobra.Command {
	return newListCmd(o, "models <category> <brand>", "Lists the models of a brand.", 2,
		func(s cascade.Snapshot) cascade.SelectorState { return s.Model })
}

func newYearsCmd(o *options) *cobra.Command {
	return newListCmd(o, "years <category> <brand> <model>", "Lists the model years of a model.", 3,
		func(s cascade.Snapshot) cascade.SelectorState { return s.Year })
}

func newQuoteCmd(o *options) *cobra.Command {
	var favorite bool
	cmd := &cobra.Command{
		Use:   "quote <category> <brand> <model> <year>",
		Short: "Shows the FIPE price of a vehicle.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.container.App
			ctx := cmd.Context()

			err := walk(ctx, a.Resolver, args[:3])
			if err == nil {
				_, err = a.Resolver.Submit(ctx, args[3])
			}
			o.report(cmd)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), view.RenderResult(a.Resolver.CurrentResult()))

			if favorite {
				_, err = a.AddCurrentFavorite(ctx)
				o.report(cmd)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&favorite, "favorite", false, "also add the vehicle to the favorites")
	return cmd
}

func newPriceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "price <code>",
		Short: "Looks a price up directly by its FIPE code.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := o.container.App.Prices.Lookup(cmd.Context(), args[0])
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Não foi possível consultar o preço do código %s.\n", args[0])
				return err
			}
			printResult(cmd.OutOrStdout(), view.RenderReferencePrice(args[0], price))
			return nil
		},
	}
}

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the web interface.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.container.Serve(cmd.Context())
		},
	}
}
