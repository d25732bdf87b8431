package main

import (
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
)

func newFactsCommand(g *globalOptions) *cobra.Command {
	var (
		p      livedns.FactsParams
		rrType string
	)

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "List record sets in a zone or domain",
		Long: `List record sets without changing anything. --record and --type narrow the
listing. A name the provider does not know yields "records": null.

Examples:
  livedns-manager facts --domain my.com
  livedns-manager facts --zone my.com --record www --type A -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, apiKey, err := g.credentials()
			if err != nil {
				return err
			}

			p.APIKey = apiKey
			p.Type = livedns.RecordType(rrType)
			p.Normalize()
			if err := p.Validate(); err != nil {
				return err
			}

			reconciler, err := g.newReconciler(ctrl.Log.WithName("facts"), cfg, apiKey, false)
			if err != nil {
				return err
			}
			records, err := reconciler.Facts(cmd.Context(), p)
			if err != nil {
				return err
			}
			return g.printOutput(cmd.OutOrStdout(), livedns.FactsOutput{Records: records})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&p.Record, "record", "", "Only list record sets with this name")
	flags.StringVar(&rrType, "type", "", "Only list record sets of this type")
	flags.StringVar(&p.Zone, "zone", "", "Name of a pre-existing zone")
	flags.StringVar(&p.Domain, "domain", "", "Domain name, used when --zone is not set")

	return cmd
}
