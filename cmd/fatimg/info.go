package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func infoCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info IMAGE",
		Short: "print the partition and volume geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.openVolume(args[0])
			if err != nil {
				return fmt.Errorf("unable to open %s: %w", args[0], err)
			}
			defer v.Close()

			partition := v.MBR().Partitions[0]
			g := v.Geometry()
			bpb := v.BPB()
			w := cmd.OutOrStdout()

			fmt.Fprintf(w, "Partition 1:         type 0x%02X, sectors %d-%d\n", partition.TypeCode, partition.LBABegin, uint64(partition.LBABegin)+uint64(partition.SectorCount)-1)
			fmt.Fprintf(w, "OEM name:            %s\n", string(bpb.OEMName[:]))
			fmt.Fprintf(w, "Volume label:        %s\n", v.Label())
			fmt.Fprintf(w, "Volume ID:           %08X\n", bpb.VolumeID)
			fmt.Fprintf(w, "Bytes per sector:    %d\n", g.BytesPerSector)
			fmt.Fprintf(w, "Sectors per cluster: %d\n", g.SectorsPerCluster)
			fmt.Fprintf(w, "Reserved sectors:    %d\n", g.ReservedSectors)
			fmt.Fprintf(w, "FATs:                %d of %d sectors, first at sector %d\n", g.NumFATs, g.FATSize, g.FirstFatSector())
			fmt.Fprintf(w, "First data sector:   %d\n", g.FirstDataSector())
			fmt.Fprintf(w, "Clusters:            %d of %d bytes\n", g.ClusterCount(), g.ClusterByteSize())
			fmt.Fprintf(w, "Root cluster:        %d\n", g.RootCluster)
			return nil
		},
	}

	return cmd
}
