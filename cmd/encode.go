package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Beastly713/steganoweb/pkg/service"
	"github.com/spf13/cobra"
)

var (
	message    string
	encodeOut  string
	encodeAI   bool
	promptText string
)

var encodeCmd = &cobra.Command{
	Use:   "encode [image]",
	Short: "Hide a message inside an image",
	Long: `Encode hides a text message in the least significant bits of a PNG or
JPEG image. The result is always written as PNG so the hidden bits survive.

Example:
  steganoweb encode holiday.jpg -m "Hello hidden world!" -o postcard.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath := args[0]

		data, err := os.ReadFile(inPath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		result, err := svc.Encode(cmd.Context(), data, message, service.EncodeOptions{
			UseAI:  encodeAI,
			Prompt: promptText,
		})
		if err != nil {
			return err
		}

		outPath := encodeOut
		if outPath == "" {
			outPath = defaultEncodedPath(inPath)
		}
		if err := os.WriteFile(outPath, result.PNG, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Message hidden in %s\n", outPath)
		return nil
	},
}

// defaultEncodedPath turns photo.jpg into photo.stego.png next to it.
func defaultEncodedPath(inPath string) string {
	ext := filepath.Ext(inPath)
	return strings.TrimSuffix(inPath, ext) + ".stego.png"
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVarP(&message, "message", "m", "", "Text to hide")
	encodeCmd.Flags().StringVarP(&encodeOut, "output", "o", "", "Output PNG path (default: <image>.stego.png)")
	encodeCmd.Flags().BoolVar(&encodeAI, "ai", false, "Enhance the image with the configured AI service before hiding")
	encodeCmd.Flags().StringVar(&promptText, "prompt", "", "Custom enhancement prompt (with --ai)")

	encodeCmd.MarkFlagRequired("message")
}
