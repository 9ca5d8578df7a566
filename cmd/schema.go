package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/krapi/cms/internal/schema"
	"github.com/krapi/cms/internal/service"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "table schema commands",
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	schemaCmd.AddCommand(createSchemaCmd())
	schemaCmd.AddCommand(listSchemasCmd())
	schemaCmd.AddCommand(getSchemaCmd())
	schemaCmd.AddCommand(updateSchemaCmd())
	schemaCmd.AddCommand(deleteSchemaCmd())
}

func createSchemaCmd() *cobra.Command {
	var projectID string
	var name string
	var description string
	var fieldsJSON string
	var performer string

	var required = []string{"project-id", "name", "fields"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a table schema",
		Example: `krapi schema create -p <project-id> -n post -f '[{"name":"title","type":"string","required":true}]'`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var fields []schema.FieldDef
			if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
				logrus.Errorf("invalid fields json: %v", err)
				return
			}

			svc := buildServices()
			created, err := svc.schemas.CreateSchema(context.Background(), service.CreateSchemaRequest{
				ProjectID:   projectID,
				Name:        name,
				Description: description,
				Fields:      fields,
				Performer:   service.Performer{UserID: performer},
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("table schema created with id: %s", created.ID)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&name, "name", "n", "", "schema name (required)")
	command.Flags().StringVarP(&fieldsJSON, "fields", "f", "", "field definitions as json (required)")
	command.Flags().StringVarP(&description, "description", "d", "", "schema description")
	command.Flags().StringVarP(&performer, "performer", "u", "", "user id recorded in the changelog")

	command.Flags().SortFlags = false

	return command
}

func listSchemasCmd() *cobra.Command {
	var projectID string

	var required = []string{"project-id"}

	command := &cobra.Command{
		Use:     "list",
		Short:   "list table schemas",
		Example: "krapi schema list -p <project-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			svc := buildServices()
			schemas, err := svc.schemas.ListSchemas(context.Background(), projectID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Name", "Fields", "Description"})
			for _, s := range schemas {
				fields, err := s.FieldDefs()
				if err != nil {
					logrus.Error(err)
					return
				}
				table.Append([]string{s.ID, s.Name, strconv.Itoa(len(fields)), s.Description})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().SortFlags = false

	return command
}

func getSchemaCmd() *cobra.Command {
	var projectID string
	var name string

	var required = []string{"project-id", "name"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a table schema",
		Example: "krapi schema get -p <project-id> -n <name>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			svc := buildServices()
			tableSchema, err := svc.schemas.GetSchema(context.Background(), projectID, name)
			if err != nil {
				logrus.Error(err)
				return
			}

			fields, err := tableSchema.FieldDefs()
			if err != nil {
				logrus.Error(err)
				return
			}

			printField("ID", tableSchema.ID)
			printField("Name", tableSchema.Name)
			printField("Description", tableSchema.Description)
			printJSON("Fields", fields)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&name, "name", "n", "", "schema name (required)")
	command.Flags().SortFlags = false

	return command
}

func updateSchemaCmd() *cobra.Command {
	var projectID string
	var name string
	var description string
	var fieldsJSON string
	var performer string

	var required = []string{"project-id", "name"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update a table schema",
		Example: `krapi schema update -p <project-id> -n post -f '[...]' -d "blog posts"`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			req := service.UpdateSchemaRequest{
				ProjectID: projectID,
				Name:      name,
				Performer: service.Performer{UserID: performer},
			}
			if cmd.Flag("description").Changed {
				req.Description = &description
			}
			if fieldsJSON != "" {
				var fields []schema.FieldDef
				if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
					logrus.Errorf("invalid fields json: %v", err)
					return
				}
				req.Fields = fields
			}

			svc := buildServices()
			updated, err := svc.schemas.UpdateSchema(context.Background(), req)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("table schema %s updated", updated.Name)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&name, "name", "n", "", "schema name (required)")
	command.Flags().StringVarP(&fieldsJSON, "fields", "f", "", "replacement field definitions as json")
	command.Flags().StringVarP(&description, "description", "d", "", "schema description")
	command.Flags().StringVarP(&performer, "performer", "u", "", "user id recorded in the changelog")

	command.Flags().SortFlags = false

	return command
}

func deleteSchemaCmd() *cobra.Command {
	var projectID string
	var name string
	var performer string

	var required = []string{"project-id", "name"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a table schema (blocked while documents exist)",
		Example: "krapi schema delete -p <project-id> -n <name>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			svc := buildServices()
			err := svc.schemas.DeleteSchema(context.Background(), projectID, name, service.Performer{UserID: performer})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("table schema %s deleted", name)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&name, "name", "n", "", "schema name (required)")
	command.Flags().StringVarP(&performer, "performer", "u", "", "user id recorded in the changelog")
	command.Flags().SortFlags = false

	return command
}
