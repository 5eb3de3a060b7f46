package main

import (
	"fmt"
	"path"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func extractCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract IMAGE PATH",
		Short: "copy a file out of the image",
		Long: `Copy the file at PATH out of the image.
PATH components may be long names or 8.3 names, both compared case-insensitive.
Without --output the file is written to the current directory using the last PATH component as name.
Use "--output -" to write to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.openVolume(args[0])
			if err != nil {
				return fmt.Errorf("unable to open %s: %w", args[0], err)
			}
			defer v.Close()

			filePath := imagePath(args[1])
			file, err := v.Lookup(filePath)
			if err != nil {
				return fmt.Errorf("unable to find %s: %w", args[1], err)
			}

			if output == "-" {
				_, err := v.Extract(file, cmd.OutOrStdout())
				return err
			}

			if output == "" {
				output = path.Base(path.Clean("/" + filePath))
			}

			n, err := v.ExtractTo(file, opts.fs, output)
			if err != nil {
				return fmt.Errorf("unable to extract %s: %w", args[1], err)
			}

			log.Infof("Extracted %s to %s (%d bytes)", args[1], output, n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write to, - for stdout")

	return cmd
}
