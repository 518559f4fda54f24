package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/presenter"
	thoughtUsecase "github.com/johnquangdev/meeting-thoughts/internal/usecase/thought"
)

var mergedContent string

func init() {
	similar := &cobra.Command{
		Use:   "similar <thought-id>",
		Short: "Rank near-duplicate candidates for a thought without storing them",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimilar,
	}

	merge := &cobra.Command{
		Use:   "merge <primary-id> <merge-id>...",
		Short: "Fold thoughts into a primary thought",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runMerge,
	}
	merge.Flags().StringVar(&mergedContent, "content", "", "Replacement content for the primary thought")

	RootCmd.AddCommand(similar, merge)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	id, err := parseIDs(args)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	edges, err := a.ThoughtService.FindSimilarCandidates(cmd.Context(), id[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), presenter.ToSimilarResponses(edges))
}

func runMerge(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	in := thoughtUsecase.MergeInput{PrimaryID: ids[0], MergeIDs: ids[1:]}
	if cmd.Flags().Changed("content") {
		in.MergedContent = &mergedContent
	}

	t, err := a.ThoughtService.MergeThoughts(cmd.Context(), in)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), presenter.ToThoughtResponse(t))
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, raw := range args {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid thought id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
