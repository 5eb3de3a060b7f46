package main

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aligator/fatimg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func shellCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell IMAGE",
		Short: "browse the image interactively",
		Long: `Browse the image with a prompt which understands
  DIR            list the current directory
  CD NAME        change into the directory NAME, ".." is the parent
  EXTRACT NAME   copy the file NAME of the current directory to the working directory
  QUIT           leave the shell
Commands are case-insensitive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.openVolume(args[0])
			if err != nil {
				return fmt.Errorf("unable to open %s: %w", args[0], err)
			}
			defer v.Close()

			s := &shell{
				v:    v,
				opts: opts,
				out:  cmd.OutOrStdout(),
				dir:  v.RootCluster(),
				cwd:  "/",
			}
			return s.run(cmd.InOrStdin())
		},
	}

	return cmd
}

// shell keeps the current directory of an interactive session.
type shell struct {
	v    *fatimg.Volume
	opts *options
	out  io.Writer

	dir fatimg.ClusterAddress
	cwd string
}

func (s *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "%s> ", s.cwd)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		command, arg := splitCommand(scanner.Text())
		switch strings.ToUpper(command) {
		case "":
			continue
		case "DIR":
			s.list()
		case "CD":
			s.changeDirectory(arg)
		case "EXTRACT":
			s.extract(arg)
		case "QUIT", "EXIT":
			fmt.Fprintln(s.out, "Shutting down...")
			return nil
		default:
			fmt.Fprintf(s.out, "Unknown command %s\n", command)
		}
		fmt.Fprintln(s.out)
	}
}

// splitCommand splits a line into the command and the rest, which may contain spaces.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

func (s *shell) list() {
	listing, err := s.v.ListEntries(s.dir)
	if err != nil {
		log.WithError(err).Error("could not list the directory")
		return
	}
	printListing(s.out, s.v.Label(), s.cwd, listing)
}

func (s *shell) changeDirectory(name string) {
	if name == "" {
		fmt.Fprintln(s.out, "Usage: CD NAME")
		return
	}

	file, err := s.v.FindByName(s.dir, name)
	if err != nil {
		log.WithError(err).Debug("could not change directory")
		fmt.Fprintln(s.out, "Directory Not Found")
		return
	}

	next, err := s.v.ChangeDirectory(file)
	if err != nil {
		log.WithError(err).Debug("could not change directory")
		fmt.Fprintln(s.out, "Directory Not Found")
		return
	}

	s.dir = s.v.DirectoryCluster(next)
	s.cwd = path.Join(s.cwd, file.Name())
}

func (s *shell) extract(name string) {
	if name == "" {
		fmt.Fprintln(s.out, "Usage: EXTRACT NAME")
		return
	}

	file, err := s.v.FindByName(s.dir, name)
	if err != nil {
		log.WithError(err).Debug("could not extract")
		fmt.Fprintln(s.out, "File Not Found")
		return
	}

	n, err := s.v.ExtractTo(file, s.opts.fs, file.Name())
	if err != nil {
		log.WithError(err).Error("could not extract")
		return
	}

	fmt.Fprintf(s.out, "Extracted %s (%d bytes)\n", file.Name(), n)
}
