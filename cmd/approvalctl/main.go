package main

import (
	"fmt"
	"os"

	"github.com/GGital/terraform-opstella/internal/client"

	"github.com/spf13/cobra"
)

var (
	serviceURL string
	jsonOutput bool
	outputFlag string

	approvalClient *client.HTTPClient
)

func defaultServiceURL() string {
	if s := os.Getenv("APPROVAL_SERVICE_URL"); s != "" {
		return s
	}
	return "http://localhost:8000"
}

var rootCmd = &cobra.Command{
	Use:           "approvalctl <command>",
	Short:         "审批服务命令行客户端",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		approvalClient = client.NewHTTPClient(serviceURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serviceURL, "url", defaultServiceURL(), "审批服务地址 (环境变量 APPROVAL_SERVICE_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "以 JSON 输出（等同于 -o json）")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", formatTable, "输出格式: table, json, yaml")

	rootCmd.AddGroup(
		&cobra.Group{ID: "approval", Title: "审批:"},
		&cobra.Group{ID: "system", Title: "系统:"},
	)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(waitCmd)

	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
