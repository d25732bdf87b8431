package main

import (
	"strings"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
)

func newRecordCommand(g *globalOptions) *cobra.Command {
	var (
		p      livedns.Params
		state  string
		rrType string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Ensure a record set is present or absent",
		Long: `Converge one record set, identified by name and type, towards the desired
state. Values are compared as a set and the TTL is compared only when it is
set, so repeating a run changes nothing.

Examples:
  # Create or update an A record in a zone
  livedns-manager record --zone my.com --record test --type A --value 127.0.0.1

  # Point a CNAME at www
  livedns-manager record --domain my.com --record mail --type CNAME --value www

  # Delete a record set
  livedns-manager record --domain my.com --record mail --type CNAME --state absent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, apiKey, err := g.credentials()
			if err != nil {
				return err
			}

			p.APIKey = apiKey
			p.State = livedns.State(state)
			p.Type = livedns.RecordType(rrType)
			p.Normalize()
			if err := p.Validate(); err != nil {
				return err
			}

			reconciler, err := g.newReconciler(ctrl.Log.WithName("record"), cfg, apiKey, dryRun)
			if err != nil {
				return err
			}
			res, err := reconciler.Apply(cmd.Context(), p)
			if err != nil {
				return err
			}
			return g.printOutput(cmd.OutOrStdout(), livedns.NewOutput(p.State, res))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&p.Record, "record", "@", "Record name relative to the zone or domain")
	flags.StringVar(&rrType, "type", "", "Record type ("+typeList()+")")
	flags.StringArrayVar(&p.Values, "value", nil, "Record value (repeatable)")
	flags.IntVar(&p.TTL, "ttl", livedns.DefaultTTL, "Record TTL in seconds")
	flags.StringVar(&state, "state", string(livedns.StatePresent), "Desired state: present or absent")
	flags.StringVar(&p.Zone, "zone", "", "Name of a pre-existing zone")
	flags.StringVar(&p.Domain, "domain", "", "Domain name, used when --zone is not set")
	flags.BoolVar(&dryRun, "dry-run", false, "Report the outcome without changing anything")

	return cmd
}

func typeList() string {
	names := make([]string, 0, len(livedns.RecordTypes))
	for _, t := range livedns.RecordTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
