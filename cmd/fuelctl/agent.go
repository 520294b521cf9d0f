package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/apiclient"
	"github.com/Abin-1409/fuel-swift/internal/domain"
	"github.com/Abin-1409/fuel-swift/internal/requests"
)

func agentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "agent", Short: "Agent task commands"}
	var email string
	cmd.PersistentFlags().StringVar(&email, "email", "", "agent email (default: the token's agent)")

	tasks := &cobra.Command{
		Use:   "tasks",
		Short: "List assigned tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client().AssignedTasks(cmd.Context(), email)
			if err != nil {
				return err
			}
			return a.print(list)
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.client().DashboardStats(cmd.Context(), email)
			if err != nil {
				return err
			}
			return a.print(s)
		},
	}

	update := &cobra.Command{
		Use:       "update <task-id> <in_progress|completed>",
		Short:     "Advance a task",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.RequestInProgress), string(domain.RequestCompleted)},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.client().UpdateTaskStatus(cmd.Context(), id, email, domain.RequestStatus(args[1]))
			if err != nil {
				return err
			}
			return a.print(r)
		},
	}

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Poll assigned tasks until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			p := &apiclient.TaskPoller{
				Client:   a.client(),
				Email:    email,
				Interval: interval,
				OnTasks: func(list []requests.ServiceRequest, err error) {
					if err != nil {
						logger.Warn("poll failed", zap.Error(err))
						return
					}
					logger.Info("tasks", zap.Int("count", len(list)))
					_ = a.print(list)
				},
			}
			if err := p.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	watch.Flags().DurationVar(&interval, "interval", 30*time.Second, "poll interval")

	cmd.AddCommand(tasks, stats, update, watch)
	return cmd
}
