package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Abin-1409/fuel-swift/internal/domain"
)

func servicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "services", Short: "Browse the service catalog"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all services",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := a.client().Services(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(list)
			},
		},
		&cobra.Command{
			Use:   "get <id|type>",
			Short: "Show one service by id, or the active service of a type",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c := a.client()
				if st, ok := domain.ParseServiceType(args[0]); ok {
					s, err := c.ServiceByType(cmd.Context(), string(st))
					if err != nil {
						return err
					}
					return a.print(s)
				}
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				s, err := c.Service(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.print(s)
			},
		},
	)
	return cmd
}

func pricesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "prices <air|electric|mechanical>",
		Short:     "Show option prices for a service type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"air", "electric", "mechanical"},
		RunE: func(cmd *cobra.Command, args []string) error {
			st, ok := domain.ParseServiceType(args[0])
			if !ok {
				return fmt.Errorf("unknown service type %q", args[0])
			}
			prices, err := a.client().Prices(cmd.Context(), st)
			if err != nil {
				return err
			}
			out := map[string]any{"prices": prices}
			if n, err := a.client().Availability(cmd.Context(), st); err == nil {
				out["available"] = n
			}
			return a.print(out)
		},
	}
}

func stockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stock",
		Short: "Show stock per service type and whether each is offered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.client().Stock(cmd.Context())
			if err != nil {
				return err
			}
			offered := map[domain.ServiceType]bool{}
			for _, st := range domain.ServiceTypes {
				offered[st] = s.Available(st)
			}
			return a.print(map[string]any{"stock": s, "available": offered})
		},
	}
}
