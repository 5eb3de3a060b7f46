package main

import (
	"strings"

	"github.com/aligator/fatimg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var defaultLogFormatter = &log.TextFormatter{}

// infoFormatter prints Info() log events as plain lines.
type infoFormatter struct{}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

// options are the persistent flags shared by all commands.
type options struct {
	debug      bool
	skipChecks bool

	// fs is where images are opened and extracted files are written.
	fs afero.Fs
}

func (o *options) openVolume(image string) (*fatimg.Volume, error) {
	if o.skipChecks {
		return fatimg.OpenSkipChecks(o.fs, image)
	}
	return fatimg.Open(o.fs, image)
}

// imagePath accepts DOS style paths on the command line.
// The library only splits on '/'.
func imagePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func newCmd(fs afero.Fs) *cobra.Command {
	opts := &options{fs: fs}

	cmd := &cobra.Command{
		Use:           "fatimg",
		Short:         "read files from FAT32 disk images",
		Long:          `Inspect the first partition of an MBR partitioned FAT32 disk image, list its directories and extract files from it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.SetFormatter(new(infoFormatter))
			log.SetLevel(log.InfoLevel)
			if opts.debug {
				log.SetFormatter(defaultLogFormatter)
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	cmd.AddCommand(infoCmd(opts))
	cmd.AddCommand(lsCmd(opts))
	cmd.AddCommand(extractCmd(opts))
	cmd.AddCommand(shellCmd(opts))

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging, e.g. the volume geometry and dropped long names")
	cmd.PersistentFlags().BoolVar(&opts.skipChecks, "skip-checks", false, "Skip all validations which are not required to read the image")

	return cmd
}

func main() {
	if err := newCmd(afero.NewOsFs()).Execute(); err != nil {
		log.Fatal(err)
	}
}
