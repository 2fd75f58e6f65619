package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"ministry-site/internal/media"
)

func (a *app) probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>...",
		Short: "Print the content type and playing time of audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var failed int
			for _, name := range args {
				mt, err := mimetype.DetectFile(name)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
					failed++
					continue
				}
				f, err := os.Open(name)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
					failed++
					continue
				}
				d, err := media.Probe(mt.String(), f)
				if err != nil {
					fmt.Fprintf(out, "%s\t%s\t-\n", name, mt.String())
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", name, mt.String(), d.Round(time.Second))
			}
			if failed > 0 {
				return fmt.Errorf("%d file(s) could not be read", failed)
			}
			return nil
		},
	}
}
