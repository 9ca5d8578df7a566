package cmd

import (
	"os"
	"os/signal"

	"github.com/krapi/cms/internal/config"
	"github.com/krapi/cms/internal/jobs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "background job commands",
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	jobsCmd.AddCommand(runJobsCmd())
}

func runJobsCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "run",
		Short: "run the background jobs until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			cnf := config.LoadConfig()
			svc := buildServices()

			executor := jobs.NewTaskExecutor([]jobs.CronTask{
				jobs.NewTrashPurgeTask(svc.store, cnf.TrashRetention, cnf.PurgeSchedule),
			})
			executor.Run()
			defer executor.Stop()

			logrus.Infof("jobs running, purge schedule %s, retention %s", cnf.PurgeSchedule, cnf.TrashRetention)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			<-stop
		},
	}

	return command
}
