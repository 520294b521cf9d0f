package main

import (
	"github.com/spf13/cobra"

	"github.com/Abin-1409/fuel-swift/internal/apiclient"
	"github.com/Abin-1409/fuel-swift/internal/domain"
)

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Admin dashboard commands"}

	var status string
	regs := &cobra.Command{
		Use:   "registrations",
		Short: "List agent registration requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client().AgentRegistrations(cmd.Context(), status)
			if err != nil {
				return err
			}
			return a.print(list)
		},
	}
	regs.Flags().StringVar(&status, "status", "", "pending, accepted or rejected")

	accept := &cobra.Command{
		Use:   "accept <registration-id>",
		Short: "Accept an agent registration and create the agent account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.client().AcceptRegistration(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(r)
		},
	}

	var reason string
	reject := &cobra.Command{
		Use:   "reject <registration-id>",
		Short: "Reject an agent registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.client().RejectRegistration(cmd.Context(), id, reason)
			if err != nil {
				return err
			}
			return a.print(r)
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "rejection reason shown to the applicant")

	var filter apiclient.RequestFilter
	reqs := &cobra.Command{
		Use:   "requests",
		Short: "List service requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client().ServiceRequests(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.print(list)
		},
	}
	rf := reqs.Flags()
	rf.StringVar(&filter.Status, "status", "", "request status")
	rf.StringVar(&filter.ServiceType, "type", "", "service type")
	rf.StringVar(&filter.PaymentStatus, "payment-status", "", "payment status")
	rf.StringVar(&filter.UserEmail, "email", "", "customer email")
	rf.StringVar(&filter.Search, "search", "", "free text search")

	setStatus := &cobra.Command{
		Use:   "set-status <request-id> <status>",
		Short: "Change a request's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.client().UpdateRequestStatus(cmd.Context(), id, domain.RequestStatus(args[1]))
			if err != nil {
				return err
			}
			return a.print(r)
		},
	}

	assign := &cobra.Command{
		Use:   "assign <request-id> <agent-id>",
		Short: "Assign an agent to a request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqID, err := parseID(args[0])
			if err != nil {
				return err
			}
			agentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			r, err := a.client().AssignAgent(cmd.Context(), reqID, agentID)
			if err != nil {
				return err
			}
			return a.print(r)
		},
	}

	agents := &cobra.Command{
		Use:   "agents",
		Short: "List agents with their open task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client().AvailableAgents(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(list)
		},
	}

	cmd.AddCommand(regs, accept, reject, reqs, setStatus, assign, agents)
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the token pair; export access_token as FUELCTL_TOKEN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.client().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
