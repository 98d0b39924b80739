package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Beastly713/steganoweb/pkg/imageio"
	"github.com/Beastly713/steganoweb/pkg/pipeline"
	"github.com/Beastly713/steganoweb/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	outFile   string
	overwrite bool
)

// imageExts are the files gather picks up when given a directory.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".webp": true,
}

// gatherCmd represents the gather command
var gatherCmd = &cobra.Command{
	Use:   "gather [directory|image]...",
	Short: "Recover a message scattered across several images",
	Long: `Gather reads every image given (directories are scanned for image files,
default: current directory), collects the shards hidden in them and rebuilds
each message for which at least T (threshold) shards were found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		paths, err := expandImages(args)
		if err != nil {
			return err
		}

		groups := gatherShards(paths, svc.Limits())
		if len(groups) == 0 {
			return stego.NewError(stego.KindNoPayloadDetected, "no shards found in %s", strings.Join(args, ", "))
		}

		recovered := 0
		for _, g := range groups {
			h := g.Header
			fmt.Fprintf(cmd.OutOrStdout(), "Found shards for message %s (%d/%d)\n", h.ID, len(g.Shards), h.Threshold)

			msg, err := pipeline.Join(g)
			if err != nil {
				logger.Warn().Err(err).Str("id", h.ID).Msg("could not recover message")
				continue
			}
			if err := writeRecovered(cmd, msg, h.ID, len(groups) > 1); err != nil {
				return err
			}
			recovered++
		}

		if recovered == 0 {
			return stego.NewError(stego.KindNoPayloadDetected, "not enough shards to recover any message")
		}
		return nil
	},
}

// expandImages replaces directories in args with the image files they hold.
func expandImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

// gatherShards extracts envelopes from the images at paths and groups them.
// Images without a shard, or larger than lim.MaxDecodeBytes, are skipped.
func gatherShards(paths []string, lim stego.Limits) []*pipeline.Group {
	lim = lim.WithDefaults()

	var texts []string
	for _, path := range paths {
		buf, _, err := imageio.Load(path, lim.MaxDecodeBytes)
		if errors.Is(err, stego.ErrPayloadTooLarge) {
			logger.Warn().Err(err).Str("path", path).Msg("skipping oversized image")
			continue
		}
		if err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable image")
			continue
		}
		text, err := pipeline.Extract(buf)
		if err != nil {
			logger.Debug().Str("path", path).Msg("no shard found")
			continue
		}
		texts = append(texts, text)
	}

	groups, rejected := pipeline.Collect(texts)
	if rejected > 0 {
		logger.Debug().Int("rejected", rejected).Msg("ignored hidden messages that are not shards")
	}
	return groups
}

func writeRecovered(cmd *cobra.Command, msg []byte, id string, many bool) error {
	if outFile == "" {
		_, err := cmd.OutOrStdout().Write(append(msg, '\n'))
		return err
	}

	path := outFile
	if many {
		ext := filepath.Ext(outFile)
		path = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(outFile, ext), id, ext)
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("file %s already exists, use --overwrite to replace it", path)
	}
	if err := os.WriteFile(path, msg, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recovered message written to %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(gatherCmd)

	gatherCmd.Flags().StringVarP(&outFile, "output", "o", "", "Write the recovered message to this file instead of stdout")
	gatherCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite the output file if present")
}
