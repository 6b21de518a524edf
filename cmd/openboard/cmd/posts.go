package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openboard/openboard/forum"
)

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsShowCmd)
	postsCmd.AddCommand(postsCreateCmd)

	postsListCmd.Flags().IntP("page", "p", 0, "Page number (zero-based)")
	postsCreateCmd.Flags().StringP("title", "t", "", "Post title")
	postsCreateCmd.Flags().StringP("body", "b", "", "Post body")
	_ = postsCreateCmd.MarkFlagRequired("title")
	_ = postsCreateCmd.MarkFlagRequired("body")
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Browse and write free-board posts",
}

var postsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List posts",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		posts, err := c.ListPosts(cmd.Context(), page)
		if err != nil {
			return err
		}
		if len(posts.Content) == 0 {
			fmt.Println("No posts")
			return nil
		}
		for _, p := range posts.Content {
			fmt.Printf("%6d  %-40s  %s (likes %d, views %d)\n",
				p.PostNum, truncate(p.Title, 40), p.User, p.Like, p.Visit)
		}
		fmt.Printf("Page %d of %d\n", page+1, posts.TotalPages)
		return nil
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show [post-number]",
	Short: "Show a post and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("post number must be an integer: %q", args[0])
		}

		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		post, comments, err := c.GetPost(cmd.Context(), num)
		if err != nil {
			return err
		}
		fmt.Printf("#%d %s\n", post.PostNum, post.Title)
		fmt.Printf("by %s on %s\n\n", post.User, post.PostingDate)
		fmt.Println(post.TextBody)

		if len(comments.Content) > 0 {
			fmt.Printf("\nComments (%d):\n", len(comments.Content))
			for _, cm := range comments.Content {
				indent := ""
				if cm.Parent != 0 {
					indent = "    "
				}
				fmt.Printf("%s[%d] %s: %s\n", indent, cm.CommentNum, cm.User, cm.CommentBody)
			}
		}
		return nil
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new post",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")

		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		in := forum.PostInput{
			Title:    forum.NormalizeInput(title),
			TextBody: forum.NormalizeInput(body),
		}
		if err := c.CreatePost(cmd.Context(), in); err != nil {
			return err
		}
		fmt.Println("Post created")
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
