package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-fixed-crop/src/clipboard"
	"screen-fixed-crop/src/config"
	"screen-fixed-crop/src/logutil"
	"screen-fixed-crop/src/output"
	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/screenshot"
)

const (
	maxFileSizeMB = 64
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	width      int
	height     int
	x          int
	y          int
	hasCursor  bool
	out        string
	fill       string
	clipboard  bool
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"crop-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crop-tool",
		Short:         "Crop a fixed-size region out of a PNG",
		Long:          "Crop a width x height region centred on (x, y) out of a PNG, the same way the interactive overlay does. Parts of the region outside the image are padded.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasCursor = cmd.Flags().Changed("x") || cmd.Flags().Changed("y")
			return runWithOptions(*opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Selection width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Selection height in pixels")
	cmd.Flags().IntVar(&opts.x, "x", 0, "Selection centre x (default: image centre)")
	cmd.Flags().IntVar(&opts.y, "y", 0, "Selection centre y (default: image centre)")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output .png file or directory (default: configured OUTPUT_DIR)")
	cmd.Flags().StringVar(&opts.fill, "fill", "", "Padding outside the image: transparent or black (default: OUTSIDE_FILL)")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Also copy the crop to the clipboard")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

func runWithOptions(opts cliOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	// Configure logging BEFORE any other operations.
	if opts.verbose {
		logutil.Setup(logutil.Options{Console: stderr})
		fmt.Fprintf(stderr, "[verbose] Starting crop tool\n")
	} else {
		logutil.Setup(logutil.Options{})
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dims := ratio.Dimensions{Width: opts.width, Height: opts.height}
	if err := dims.Validate(); err != nil {
		return err
	}

	fillName := opts.fill
	if fillName == "" {
		fillName = cfg.OutsideFill
	}
	fill, err := screenshot.ParseFill(fillName)
	if err != nil {
		return err
	}

	data, err := readInput(opts.filePath, stdin)
	if err != nil {
		return err
	}
	if err := validatePNG(data); err != nil {
		return err
	}
	src, err := screenshot.DecodePNG(data)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(stderr, "[verbose] Read %d bytes, image %dx%d\n", len(data), src.Bounds().Dx(), src.Bounds().Dy())
	}

	start := time.Now()
	cursor := centre(src.Bounds())
	if opts.hasCursor {
		cursor = image.Pt(opts.x, opts.y)
	}
	rect := screenshot.SelectionRect(cursor, dims)
	cropped := screenshot.Crop(src, rect, fill)

	path, err := writeOutput(cropped, opts.out, cfg.OutputDir)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(stderr, "[verbose] Cropped %v to %s\n", rect, path)
	}

	if opts.clipboard {
		if err := clipboard.PublishImage(cropped); err != nil {
			return fmt.Errorf("clipboard error: %w", err)
		}
		if opts.verbose {
			fmt.Fprintf(stderr, "[verbose] Copied to clipboard\n")
		}
	}

	return outputResult(stdout, CropResult{
		Source:    opts.filePath,
		Output:    path,
		X:         rect.Min.X,
		Y:         rect.Min.Y,
		Width:     rect.Dx(),
		Height:    rect.Dy(),
		Clipped:   !rect.In(src.Bounds()),
		Clipboard: opts.clipboard,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  time.Since(start).Seconds(),
	}, opts.jsonOutput)
}

func readInput(filePath string, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error
	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return data, nil
}

func validatePNG(data []byte) error {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

func centre(b image.Rectangle) image.Point {
	return image.Pt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
}

// writeOutput writes to out when it names a .png file, otherwise into the
// directory out (or defaultDir) with a timestamped name.
func writeOutput(img image.Image, out, defaultDir string) (string, error) {
	if strings.EqualFold(filepath.Ext(out), ".png") {
		data, err := screenshot.EncodePNG(img)
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", out, err)
		}
		log.Printf("CROP: wrote %s", out)
		return out, nil
	}
	dir := out
	if dir == "" {
		dir = defaultDir
	}
	return output.FileSink{Dir: dir}.Save(img)
}

type CropResult struct {
	Source    string  `json:"source"`
	Output    string  `json:"output"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Clipped   bool    `json:"clipped"`
	Clipboard bool    `json:"clipboard"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
}

func outputResult(w io.Writer, result CropResult, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprintln(w, result.Output)
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "width", "height", "out", "fill", "clipboard", "json", "verbose"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
