package cmd

import (
	"fmt"
	"os"

	"github.com/Beastly713/steganoweb/pkg/imageio"
	"github.com/Beastly713/steganoweb/pkg/service"
	"github.com/Beastly713/steganoweb/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	decodeAI      bool
	decodeFormats []string
)

var decodeCmd = &cobra.Command{
	Use:   "decode [image]",
	Short: "Recover a hidden message from an image",
	Long: `Decode looks for a hidden message using every known layout in priority
order: length-prefixed, alpha-null, rgb-null and delimiter. Use --format to
restrict the search.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		formats, err := parseFormats(decodeFormats)
		if err != nil {
			return err
		}

		opts := service.DecodeOptions{UseAI: decodeAI, Formats: formats}
		if decodeAI {
			opts.MimeType = mimeTypeOf(data)
		}

		msg, err := svc.Decode(cmd.Context(), data, opts)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg.Text)
		return nil
	},
}

func parseFormats(names []string) ([]stego.Format, error) {
	formats := make([]stego.Format, 0, len(names))
	for _, name := range names {
		f, ok := stego.ParseFormat(name)
		if !ok {
			return nil, stego.NewError(stego.KindInvalidInput, "unknown format %q (want one of %v)", name, stego.Formats())
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func mimeTypeOf(data []byte) string {
	info, err := imageio.Metadata(data)
	if err != nil {
		return imageio.FormatPNG.MimeType()
	}
	return info.Format.MimeType()
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().BoolVar(&decodeAI, "ai", false, "Ask the configured AI service instead of reading the bits")
	decodeCmd.Flags().StringSliceVar(&decodeFormats, "format", nil, "Only try these layouts (repeatable)")
}
