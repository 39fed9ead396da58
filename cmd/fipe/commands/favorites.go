package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/favorites"
	"fipe/consulta/internal/view"

	"github.com/spf13/cobra"
)

func newFavoritesCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manages the saved favorites.",
	}
	cmd.AddCommand(
		newFavoritesListCmd(o),
		newFavoritesRefreshCmd(o),
		newFavoritesRemoveCmd(o),
		newFavoritesClearCmd(o),
	)
	return cmd
}

func newFavoritesListCmd(o *options) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the favorites in the order they were added.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := o.container.App.Favorites.List(cmd.Context())
			o.report(cmd)
			if err != nil {
				return err
			}
			printFavorites(cmd.OutOrStdout(), view.RenderFavorites(view.FilterFavorites(entries, filter), filter))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only list favorites matching this text")
	return cmd
}

func newFavoritesRefreshCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <id>",
		Short: "Fetches the current price of a favorite.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := o.container.App.Favorites.Refresh(cmd.Context(), args[0])
			o.report(cmd)
			if err != nil {
				return err
			}
			printFavorites(cmd.OutOrStdout(), view.RenderFavorites(entries, ""))
			return nil
		},
	}
}

func newFavoritesRemoveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Removes a favorite.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := o.container.App.Favorites.Remove(cmd.Context(), args[0])
			o.report(cmd)
			if err != nil {
				return err
			}
			printFavorites(cmd.OutOrStdout(), view.RenderFavorites(entries, ""))
			return nil
		},
	}
}

func newFavoritesClearCmd(o *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Removes every favorite after confirmation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := favorites.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
				if yes {
					return true, nil
				}
				return promptYesNo(cmd, prompt)
			})

			_, err := o.container.App.Favorites.Clear(cmd.Context(), confirm)
			o.report(cmd)
			if errors.Is(err, domain.ErrNotConfirmed) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nada foi alterado.")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// promptYesNo reads one line from stdin. Only "s", "sim", "y" and "yes"
// count as yes.
func promptYesNo(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [s/N] ", prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
