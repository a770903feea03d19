package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLibraryCmd(opts Options) *cobra.Command {
	var category, search string
	var listCategories bool
	cmd := &cobra.Command{
		Use:   "library [--category <name>] [--search <text>]",
		Short: "Browse the book library",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			out := cmd.OutOrStdout()
			if listCategories {
				for _, c := range e.catalog.BookCategories() {
					_, _ = fmt.Fprintln(out, c)
				}
				return nil
			}
			books, err := e.client.Books(cmd.Context(), category, search)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				_, _ = fmt.Fprintln(out, "no books match")
				return nil
			}
			for _, b := range books {
				_, _ = fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.Category)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", "only books of this category")
	cmd.Flags().StringVar(&search, "search", "", "match title, author or theme")
	cmd.Flags().BoolVar(&listCategories, "categories", false, "list the categories instead")
	return cmd
}

func newTracksCmd(opts Options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "tracks [--category <name>]",
		Short: "List ambient audio tracks",
		RunE: runE(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			tracks, err := e.client.Tracks(cmd.Context(), category)
			if err != nil {
				return err
			}
			if len(tracks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tracks match")
				return nil
			}
			for _, t := range tracks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Category, t.Src)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", "only tracks of this category")
	return cmd
}
