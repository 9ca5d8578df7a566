package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/krapi/cms/internal/cache"
	"github.com/krapi/cms/internal/compress"
	"github.com/krapi/cms/internal/config"
	"github.com/krapi/cms/internal/queue"
	"github.com/krapi/cms/internal/service"
	"github.com/krapi/cms/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// services wires the configured store, cache and queue into the schema and
// document services for local admin use.
type services struct {
	store     store.Store
	schemas   *service.SchemaService
	documents *service.DocumentService
}

func buildServices() *services {
	cnf := config.LoadConfig()
	db := config.GetDb(cnf)

	st := store.NewGormStore(db)
	provider := store.NewDefaultProvider(st)

	var changelogQueue queue.ChangelogQueue = queue.NewNop()
	if cnf.KafkaBrokers != "" {
		kq, err := queue.NewKafka(cnf.KafkaBrokers, cnf.KafkaTopic)
		if err != nil {
			logrus.Fatalf("error connecting to kafka: %v", err)
		}
		changelogQueue = kq
	}
	recorder := service.NewChangelogRecorder(changelogQueue)

	var documentCache cache.DocumentCache
	if cnf.RedisAddr != "" {
		documentCache = cache.NewRedis(cnf.RedisAddr)
	}

	codec, err := compress.FromName(cnf.Compression)
	if err != nil {
		logrus.Fatalf("invalid compression config: %v", err)
	}

	return &services{
		store:     st,
		schemas:   service.NewSchemaService(provider, nil, recorder),
		documents: service.NewDocumentService(provider, nil, recorder, codec, documentCache),
	}
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

func printJSON(label string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logrus.Error(err)
		return
	}
	printField(label, string(data))
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}
