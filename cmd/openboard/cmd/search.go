package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openboard/openboard/forum"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("page", "p", 0, "Page number (zero-based)")
	searchCmd.Flags().Bool("title", true, "Match against titles")
	searchCmd.Flags().Bool("body", false, "Match against post bodies")
	searchCmd.Flags().Bool("author", false, "Match against author names")
}

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search posts by keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		title, _ := cmd.Flags().GetBool("title")
		body, _ := cmd.Flags().GetBool("body")
		author, _ := cmd.Flags().GetBool("author")

		q := forum.SearchQuery{Keyword: forum.NormalizeInput(args[0])}
		if title {
			q.Title = 1
		}
		if body {
			q.Text = 1
		}
		if author {
			q.User = 1
		}

		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		posts, err := c.SearchPosts(cmd.Context(), page, q)
		if err != nil {
			return err
		}
		if len(posts.Content) == 0 {
			fmt.Println("No matches")
			return nil
		}
		for _, p := range posts.Content {
			fmt.Printf("%6d  %-40s  %s\n", p.PostNum, truncate(p.Title, 40), p.User)
		}
		fmt.Printf("Page %d of %d\n", page+1, posts.TotalPages)
		return nil
	},
}
