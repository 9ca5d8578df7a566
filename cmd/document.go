package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/krapi/cms/internal/service"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "document commands",
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	docCmd.AddCommand(createDocCmd())
	docCmd.AddCommand(getDocCmd())
	docCmd.AddCommand(listDocCmd())
	docCmd.AddCommand(updateDocCmd())
	docCmd.AddCommand(deleteDocCmd())
}

func createDocCmd() *cobra.Command {
	var projectID string
	var tableName string
	var dataJSON string
	var performer string

	var required = []string{"project-id", "table", "data"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a document",
		Example: `krapi doc create -p <project-id> -t post -d '{"title":"Hello"}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			raw := make(map[string]interface{})
			if err := json.Unmarshal([]byte(dataJSON), &raw); err != nil {
				logrus.Errorf("invalid data json: %v", err)
				return
			}

			svc := buildServices()
			doc, err := svc.documents.CreateDocument(context.Background(), projectID, tableName, raw, service.Performer{UserID: performer})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("document created with id: %s", doc["id"])
			printJSON("Document", doc)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&tableName, "table", "t", "", "table name (required)")
	command.Flags().StringVarP(&dataJSON, "data", "d", "", "document data as json (required)")
	command.Flags().StringVarP(&performer, "performer", "u", "", "user id recorded in the changelog")

	command.Flags().SortFlags = false

	return command
}

func getDocCmd() *cobra.Command {
	var projectID string
	var tableName string
	var docID string

	var required = []string{"project-id", "table", "doc-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a document",
		Example: "krapi doc get -p <project-id> -t <table> -i <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			svc := buildServices()
			doc, err := svc.documents.GetDocument(context.Background(), projectID, tableName, docID)
			if err != nil {
				logrus.Error(err)
				return
			}

			printJSON("Document", doc)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&tableName, "table", "t", "", "table name (required)")
	command.Flags().StringVarP(&docID, "doc-id", "i", "", "document id (required)")
	command.Flags().SortFlags = false

	return command
}

func listDocCmd() *cobra.Command {
	var projectID string
	var tableName string
	var page int
	var limit int
	var sortField string
	var order string
	var filterJSON string

	var required = []string{"project-id", "table"}

	command := &cobra.Command{
		Use:     "list",
		Short:   "list documents",
		Example: `krapi doc list -p <project-id> -t post --page 1 --limit 20 --sort title --order asc`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			query := service.ListQuery{
				Page:  page,
				Limit: limit,
				Sort:  sortField,
				Order: order,
			}
			if filterJSON != "" {
				filter := make(map[string]interface{})
				if err := json.Unmarshal([]byte(filterJSON), &filter); err != nil {
					logrus.Errorf("invalid filter json: %v", err)
					return
				}
				query.Filter = filter
			}

			svc := buildServices()
			res, err := svc.documents.ListDocuments(context.Background(), projectID, tableName, query)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Created", "Updated"})
			for _, doc := range res.Documents {
				created, _ := doc["created_at"].(string)
				updated, _ := doc["updated_at"].(string)
				id, _ := doc["id"].(string)
				table.Append([]string{id, created, updated})
			}
			table.Render()

			printField("Total", strconv.FormatInt(res.Total, 10))
			printField("Pages", strconv.FormatInt(res.TotalPages(limit), 10))
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&tableName, "table", "t", "", "table name (required)")
	command.Flags().IntVar(&page, "page", 1, "page number")
	command.Flags().IntVar(&limit, "limit", 20, "page size")
	command.Flags().StringVar(&sortField, "sort", "", "sort field")
	command.Flags().StringVar(&order, "order", "asc", "sort order: asc or desc")
	command.Flags().StringVar(&filterJSON, "filter", "", "equality filter as json")

	command.Flags().SortFlags = false

	return command
}

func updateDocCmd() *cobra.Command {
	var projectID string
	var tableName string
	var docID string
	var dataJSON string
	var performer string

	var required = []string{"project-id", "table", "doc-id", "data"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update a document (merge then revalidate)",
		Example: `krapi doc update -p <project-id> -t post -i <doc-id> -d '{"views":6}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			partial := make(map[string]interface{})
			if err := json.Unmarshal([]byte(dataJSON), &partial); err != nil {
				logrus.Errorf("invalid data json: %v", err)
				return
			}

			svc := buildServices()
			doc, err := svc.documents.UpdateDocument(context.Background(), projectID, tableName, docID, partial, service.Performer{UserID: performer})
			if err != nil {
				logrus.Error(err)
				return
			}

			printJSON("Document", doc)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&tableName, "table", "t", "", "table name (required)")
	command.Flags().StringVarP(&docID, "doc-id", "i", "", "document id (required)")
	command.Flags().StringVarP(&dataJSON, "data", "d", "", "partial document data as json (required)")
	command.Flags().StringVarP(&performer, "performer", "u", "", "user id recorded in the changelog")

	command.Flags().SortFlags = false

	return command
}

func deleteDocCmd() *cobra.Command {
	var projectID string
	var tableName string
	var docID string
	var performer string

	var required = []string{"project-id", "table", "doc-id"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a document",
		Example: "krapi doc delete -p <project-id> -t <table> -i <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			svc := buildServices()
			err := svc.documents.DeleteDocument(context.Background(), projectID, tableName, docID, service.Performer{UserID: performer})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("document %s deleted", docID)
		},
	}

	command.Flags().StringVarP(&projectID, "project-id", "p", "", "project id (required)")
	command.Flags().StringVarP(&tableName, "table", "t", "", "table name (required)")
	command.Flags().StringVarP(&docID, "doc-id", "i", "", "document id (required)")
	command.Flags().StringVarP(&performer, "performer", "u", "", "user id recorded in the changelog")
	command.Flags().SortFlags = false

	return command
}
