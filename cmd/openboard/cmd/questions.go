package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsShowCmd)

	questionsListCmd.Flags().IntP("page", "p", 0, "Page number (zero-based)")
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Browse the question board",
}

var questionsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List questions",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		questions, err := c.ListQuestions(cmd.Context(), page)
		if err != nil {
			return err
		}
		if len(questions.Content) == 0 {
			fmt.Println("No questions")
			return nil
		}
		for _, q := range questions.Content {
			fmt.Printf("%6d  %-40s  %s (answers %d)\n",
				q.PostNum, truncate(q.Title, 40), q.User, q.Answer)
		}
		fmt.Printf("Page %d of %d\n", page+1, questions.TotalPages)
		return nil
	},
}

var questionsShowCmd = &cobra.Command{
	Use:   "show [post-number]",
	Short: "Show a question and its answers",
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

		q, answers, err := c.GetQuestion(cmd.Context(), num)
		if err != nil {
			return err
		}
		fmt.Printf("#%d %s\n", q.PostNum, q.Title)
		fmt.Printf("by %s on %s\n\n", q.User, q.PostingDate)
		fmt.Println(q.TextBody)

		if len(answers.Content) > 0 {
			fmt.Printf("\nAnswers (%d):\n", len(answers.Content))
			for _, a := range answers.Content {
				fmt.Printf("[%d] %s (+%d/-%d)\n%s\n\n", a.PostNum, a.User, a.Like, a.Dislike, a.TextBody)
			}
		}
		return nil
	},
}
