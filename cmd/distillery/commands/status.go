package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andreapavoni/distillery/internal/cli/output"
	"github.com/andreapavoni/distillery/pkg/release"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show each store's current schema version",
	Long: `Connect to every configured store and report the schema version the
migration engine has recorded, without applying anything.

A dirty store indicates a previously failed migration that needs manual
intervention before the next run.

Examples:
  distillery status
  distillery status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	cfg, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	statuses, err := release.Status(context.Background(), cfg)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, statuses)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, statuses)
	default:
		table := output.NewTableData("STORE", "APP", "TYPE", "VERSION", "DIRTY")
		for _, s := range statuses {
			version := "-"
			if s.Applied {
				version = strconv.FormatUint(uint64(s.Version), 10)
			}
			table.AddRow(s.Store, s.App, s.Type, version, fmt.Sprintf("%t", s.Dirty))
		}
		return output.PrintTable(os.Stdout, table)
	}
}
