package cli

import (
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-thoughts/internal/app"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

func init() {
	seed := &cobra.Command{
		Use:   "seed-tags <file>",
		Short: "Upsert the tag vocabulary from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeedTags,
	}

	list := &cobra.Command{
		Use:   "tags",
		Short: "List the tag vocabulary with thought counts",
		Args:  cobra.NoArgs,
		RunE:  runListTags,
	}

	RootCmd.AddCommand(seed, list)
}

func runSeedTags(cmd *cobra.Command, args []string) error {
	seeds, err := config.LoadTagSeeds(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.SeedTags(cmd.Context(), seeds); err != nil {
		return err
	}
	return printTags(cmd, a)
}

func runListTags(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return printTags(cmd, a)
}

func printTags(cmd *cobra.Command, a *app.App) error {
	tags, err := a.Tags.List(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), presenter.ToTagListResponse(tags))
}
