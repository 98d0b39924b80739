package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity [image]...",
	Short: "Report how much text an image can carry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wtr := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "Image\tFormat\tSize\tPixels\tCapacity (Bits)\tMax Message (Bytes)")
		fmt.Fprintln(wtr, "-----\t------\t----\t------\t---------------\t-------------------")

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			c, err := svc.Inspect(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(wtr, "%s\t%s\t%dx%d\t%d\t%d\t%d\n",
				path, c.Info.Format, c.Info.Width, c.Info.Height, c.Pixels, c.Bits, c.MaxBytes)
		}

		return wtr.Flush()
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)
}
