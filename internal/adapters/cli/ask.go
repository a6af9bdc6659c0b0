package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAskCmd(services Services) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question end to end",
		Long: `Runs the full question pipeline: relevance gate, intent routing,
retrieval or recommendation, and answer generation when it is enabled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answerer, err := services.Answerer(cmd.Context())
			if err != nil {
				return err
			}
			reply, err := answerer.AnswerQuestion(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}
			if asJSON {
				return printJSON(cmd, reply)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n%s\n", reply.Kind, reply.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the reply as JSON")
	return cmd
}
