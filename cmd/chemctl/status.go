package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show deployment status and recent events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := newClient().Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", report.Status)
			fmt.Fprintf(out, "Recent deployments (%d):\n", len(report.Deployments))
			for _, d := range report.Deployments {
				fmt.Fprintf(out, "  %s  %s  %s  %s\n", d.CreatedAt.Format("2006-01-02 15:04"), d.Status, d.DeploymentID, d.URL)
			}
			fmt.Fprintf(out, "Recent errors (%d):\n", len(report.Errors))
			for _, e := range report.Errors {
				fmt.Fprintf(out, "  %s  %s  %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.DeploymentID, e.Error)
			}
			return nil
		},
	}
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Revoke the current session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := newClient().SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}
