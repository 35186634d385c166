package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/tally/internal/ocr"
	"github.com/MeKo-Tech/tally/internal/receipt"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// parseCmd represents the parse command.
var parseCmd = &cobra.Command{
	Use:   "parse [flags] FILE...",
	Short: "Parse receipt screenshots into a structured order record",
	Long: `Parse one or more receipt screenshots into a structured order record.

Screenshot files are uploaded to the text-detection engine in the order
given, which must be top to bottom for scrolling receipts. With --regions,
the files are read as saved engine responses (JSON) instead of images and
the engine is not contacted.

Examples:
  tally parse screenshot.png
  tally parse top.png middle.png bottom.png
  tally parse --regions captured.json --format text`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		if format != outputFormatJSON && format != outputFormatText {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join([]string{outputFormatJSON, outputFormatText}, ", "))
		}

		if keywordsFile, _ := cmd.Flags().GetString("keywords"); keywordsFile != "" {
			cfg.Parser.KeywordsFile = keywordsFile
		}
		parserCfg, err := cfg.ToParserConfig()
		if err != nil {
			return err
		}
		parser := receipt.NewParser(parserCfg)

		fromRegions, _ := cmd.Flags().GetBool("regions")

		var images [][]receipt.Token
		if fromRegions {
			images, err = readRegionFiles(args)
		} else {
			images, err = detectImages(cmd.Context(), cfg.Engine.URL, cfg.Engine.TimeoutSec, cfg.Engine.MaxImageWidth, args)
		}
		if err != nil {
			return err
		}

		result := parser.Parse(images)
		return writeResult(cmd, format, result)
	},
}

// readRegionFiles loads saved engine responses, one file per screenshot.
func readRegionFiles(paths []string) ([][]receipt.Token, error) {
	images := make([][]receipt.Token, 0, len(paths))
	for _, path := range paths {
		res, err := ocr.ReadResultFile(path)
		if err != nil {
			return nil, err
		}
		images = append(images, receipt.Normalize(res.Detections))
	}
	return images, nil
}

// detectImages uploads screenshots to the engine and normalizes the results.
func detectImages(ctx context.Context, engineURL string, timeoutSec, maxWidth int, paths []string) ([][]receipt.Token, error) {
	client := ocr.NewClient(engineURL, time.Duration(timeoutSec)*time.Second)

	images := make([][]receipt.Token, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read screenshot %s: %w", path, err)
		}
		prepared, err := ocr.PrepareImage(data, maxWidth)
		if err != nil {
			return nil, fmt.Errorf("prepare screenshot %s: %w", path, err)
		}
		res, err := client.DetectImage(ctx, prepared, path)
		if err != nil {
			return nil, fmt.Errorf("detect text in %s: %w", path, err)
		}
		images = append(images, receipt.Normalize(res.Detections))
	}
	return images, nil
}

// writeResult writes the parse result in the requested format.
func writeResult(cmd *cobra.Command, format string, result receipt.Result) error {
	out := cmd.OutOrStdout()

	if format == outputFormatText {
		fmt.Fprintf(out, "Order:      #%s\n", result.OrderNumber)
		fmt.Fprintf(out, "Restaurant: %s\n", result.Restaurant)
		fmt.Fprintln(out, "Items:")
		for _, item := range result.Items {
			fmt.Fprintf(out, "  %dx %s", item.Quantity, item.Name)
			if item.Price > 0 {
				fmt.Fprintf(out, "  $%.2f", item.Price)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Subtotal:   $%.2f\n", result.Subtotal)
		fmt.Fprintf(out, "Total:      $%.2f\n", result.Total)
		fmt.Fprintf(out, "Valid:      %v\n", result.IsValid)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "Error:      %s\n", e)
		}
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Bool("regions", false, "treat inputs as saved engine responses (JSON) instead of images")
	parseCmd.Flags().StringP("format", "f", "json", "output format (json, text)")
	parseCmd.Flags().String("keywords", "", "YAML file overriding the section keyword table")
}
