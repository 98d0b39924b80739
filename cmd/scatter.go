package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Beastly713/steganoweb/pkg/imageio"
	"github.com/Beastly713/steganoweb/pkg/pipeline"
	"github.com/Beastly713/steganoweb/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	threshold int
	destDir   string
	workers   int
)

var scatterCmd = &cobra.Command{
	Use:   "scatter [message-file|-] [carrier]...",
	Short: "Spread a message across several images",
	Long: `Scatter compresses a message, splits it into one shard per carrier image
and hides each shard in its carrier. Any T of the resulting images recover the
message with "gather"; every image on its own is also readable by "decode".

Example:
  steganoweb scatter plans.txt a.png b.png c.jpg d.png e.png -t 3

  This creates 5 images. Any 3 are needed to recover plans.txt.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		messagePath, carrierPaths := args[0], args[1:]

		// 1. Validation
		if threshold < 1 {
			return stego.NewError(stego.KindInvalidInput, "threshold (-t) must be at least 1")
		}
		if threshold > len(carrierPaths) {
			return stego.NewError(stego.KindInvalidInput, "threshold cannot be greater than the number of carriers (%d)", len(carrierPaths))
		}

		// 2. Read the message
		var (
			msg []byte
			err error
		)
		if messagePath == "-" {
			msg, err = io.ReadAll(cmd.InOrStdin())
		} else {
			msg, err = os.ReadFile(messagePath)
		}
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		// 3. Load carriers
		carriers := make([]stego.PixelBuffer, len(carrierPaths))
		for i, path := range carrierPaths {
			carriers[i], err = loadCarrier(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		// 4. Compress -> Shard -> Envelope
		envelopes, err := pipeline.Scatter(msg, pipeline.Config{
			Total:     len(carrierPaths),
			Threshold: threshold,
		})
		if err != nil {
			return err
		}

		// 5. Hide every envelope in its carrier
		encoded, err := pipeline.Embed(cmd.Context(), carriers, envelopes, workers)
		if err != nil {
			return err
		}

		// 6. Write the images
		if destDir != "" {
			if err := os.MkdirAll(destDir, 0755); err != nil {
				return fmt.Errorf("failed to create destination directory: %w", err)
			}
		}
		for i, buf := range encoded {
			outPath := shardPath(carrierPaths[i], i+1, len(encoded))
			if err := imageio.Save(outPath, buf); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", outPath)
		}

		logger.Info().Int("total", len(encoded)).Int("threshold", threshold).Msg("message scattered")
		return nil
	},
}

func loadCarrier(path string) (stego.PixelBuffer, error) {
	buf, info, err := imageio.Load(path, svc.Limits().MaxEncodeBytes)
	if err != nil {
		return stego.PixelBuffer{}, err
	}
	if !imageio.IsEncodable(info.Format) {
		return stego.PixelBuffer{}, stego.NewError(stego.KindUnreadableImage, "unsupported image format %q", info.Format)
	}
	return buf, nil
}

// shardPath names the i-th output after its carrier, e.g. beach_2_of_5.png.
func shardPath(carrier string, index, total int) string {
	base := filepath.Base(carrier)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	dir := destDir
	if dir == "" {
		dir = filepath.Dir(carrier)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d_of_%d.png", name, index, total))
}

func init() {
	rootCmd.AddCommand(scatterCmd)

	scatterCmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Number of images required to recover the message")
	scatterCmd.Flags().StringVarP(&destDir, "destination", "d", "", "Directory for the output images (default: next to each carrier)")
	scatterCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Carriers encoded in parallel")

	scatterCmd.MarkFlagRequired("threshold")
}
