package commands

import (
	"github.com/spf13/cobra"

	"ragflowctl/app"
	"ragflowctl/internal/sdkclient"
)

func newDemoCommand(a *app.App) *cobra.Command {
	var opts sdkclient.DemoOptions
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through datasets, documents, chat and agents with the API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.SDK()
			if err != nil {
				return err
			}
			return sdkclient.RunDemo(cmd.Context(), c, cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.DatasetName, "dataset", "", "dataset name")
	f.StringVar(&opts.ChatName, "chat", "", "chat assistant name")
	f.StringVar(&opts.UploadFile, "file", "", "file to upload (skipped when missing, default /tmp/test.txt)")
	f.StringVar(&opts.Question, "question", "", "question for the assistant")
	return cmd
}
