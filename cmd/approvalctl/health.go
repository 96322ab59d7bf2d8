package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "检查审批服务健康状态",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := approvalClient.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("检查健康状态: %w", err)
		}

		done, err := printStructured(cmd.OutOrStdout(), health)
		if err != nil {
			return err
		}
		if !done {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", health.Service, health.Status)
		}

		if health.Status != "healthy" {
			return fmt.Errorf("服务不健康: %s", health.Status)
		}
		return nil
	},
}
