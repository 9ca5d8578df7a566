package cmd

import (
	"context"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "changelog commands",
}

func init() {
	rootCmd.AddCommand(changelogCmd)
	changelogCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	changelogCmd.AddCommand(listChangelogCmd())
}

func listChangelogCmd() *cobra.Command {
	var projectID string
	var entityID string
	var limit int

	var required = []string{"project-id"}

	command := &cobra.Command{
		Use:     "list",
		Short:   "list changelog entries, newest first",
		Example: "krapi changelog list -p <project-id> -e <entity-id> --limit 50",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			svc := buildServices()
			entries, err := svc.store.ListChangelogEntries(context.Background(), projectID, entityID, limit)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Entity", "Entity ID", "Action", "Performer", "At", "Changes"})
			for _, entry := range entries {
				table.Append([]string{
					entry.EntityType,
					entry.EntityID,
					entry.Action,
					entry.Performer,
					entry.CreatedAt.Format("2006-01-02 15:04:05"),
					entry.Changes,
				})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&entityID, "entity-id", "e", "", "narrow to one entity")
	command.Flags().IntVar(&limit, "limit", 50, "max entries")
	command.Flags().SortFlags = false

	return command
}
