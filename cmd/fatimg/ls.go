package main

import (
	"fmt"
	"io"
	"path"

	"github.com/aligator/fatimg"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func lsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls IMAGE [DIR]",
		Short: "list a directory of the image",
		Long:  `List a directory of the image like DOS DIR does. DIR defaults to the root directory.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.openVolume(args[0])
			if err != nil {
				return fmt.Errorf("unable to open %s: %w", args[0], err)
			}
			defer v.Close()

			dirPath := "/"
			if len(args) > 1 {
				dirPath = imagePath(args[1])
			}

			dir, err := v.LookupDir(dirPath)
			if err != nil {
				return fmt.Errorf("unable to find directory %s: %w", dirPath, err)
			}

			listing, err := v.ListEntries(dir)
			if err != nil {
				return fmt.Errorf("unable to list %s: %w", dirPath, err)
			}

			printListing(cmd.OutOrStdout(), v.Label(), dirPath, listing)
			return nil
		},
	}

	return cmd
}

// printListing writes the listing in the format of DOS DIR.
// Entries show their creation stamp.
func printListing(w io.Writer, volumeLabel string, dirPath string, listing *fatimg.Listing) {
	p := message.NewPrinter(language.English)

	if listing.Label != "" {
		fmt.Fprintf(w, "Volume in drive is %s\n\n", listing.Label)
	}
	fmt.Fprintf(w, "Directory of %s:%s\n\n", volumeLabel, path.Clean("/"+dirPath))

	for _, e := range listing.Entries {
		date := fatimg.DecodeDate(e.CreateDate)
		clock := fatimg.DecodeTime(e.CreateTime)
		hour, period := to12Hour(clock.Hour)

		fmt.Fprintf(w, "%02d/%02d/%04d %02d:%02d %s ", date.Day, date.Month, date.Year, hour, clock.Minute, period)
		if e.IsDir() {
			fmt.Fprintf(w, "%-14s ", "<DIR>")
		} else {
			p.Fprintf(w, "%14d ", e.FileSize)
		}
		fmt.Fprintf(w, "%-12s %s\n", e.ShortName(), e.LongName)
	}

	p.Fprintf(w, "\n%d File(s) %14d bytes\n", listing.Files, listing.TotalBytes)
	fmt.Fprintf(w, "%d Dir(s)\n", listing.Dirs)
}

func to12Hour(hour int) (int, string) {
	switch {
	case hour == 0:
		return 12, "AM"
	case hour < 12:
		return hour, "AM"
	case hour == 12:
		return 12, "PM"
	default:
		return hour - 12, "PM"
	}
}
