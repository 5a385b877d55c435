// Command colorseg teaches and runs a block color classifier, either live
// on a camera or on still images.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wbrown/colorseg"
	"github.com/wbrown/colorseg/capture"
	"github.com/wbrown/colorseg/imageutil"
)

const (
	flagDebug      = "debug"
	flagBlock      = "block"
	flagObjectBox  = "object-box"
	flagTile       = "tile"
	flagSeed       = "seed"
	flagNoLegend   = "no-legend"
	flagCamera     = "camera"
	flagWidth      = "width"
	flagHeight     = "height"
	flagBackground = "background"
	flagClass      = "class"
	flagOutput     = "output"
	flagANSI       = "ansi"
	flagOverlay    = "overlay"
)

func main() {
	app := &cli.App{
		Name:  "colorseg",
		Usage: "classify image blocks by taught color distributions",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
			&cli.IntFlag{Name: flagBlock, Value: colorseg.DefaultBlockSize, Usage: "classification block size in pixels"},
			&cli.IntFlag{Name: flagTile, Value: colorseg.DefaultBackgroundTile, Usage: "background sample tile size in pixels"},
			&cli.Int64Flag{Name: flagSeed, Usage: "seed for class colors (default: time based)"},
			&cli.BoolFlag{Name: flagNoLegend, Usage: "do not draw text overlays"},
		},
		Commands: []*cli.Command{
			{
				Name:  "live",
				Usage: "teach and classify interactively from a camera",
				Description: "Keys: b background, a object sample, o next class, r start/pause classification,\n" +
					"f freeze frame, v compare halves, x reset, q or ESC quit.",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagCamera, Value: 0, Usage: "video device id"},
					&cli.IntFlag{Name: flagWidth, Value: colorseg.DefaultFrameWidth, Usage: "requested frame width"},
					&cli.IntFlag{Name: flagHeight, Value: colorseg.DefaultFrameHeight, Usage: "requested frame height"},
					&cli.IntFlag{Name: flagObjectBox, Value: colorseg.DefaultObjectBox, Usage: "object sample square size"},
				},
				Action: runLive,
			},
			{
				Name:      "classify",
				Usage:     "teach from still images and classify one image",
				ArgsUsage: "FRAME",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     flagBackground,
						Aliases:  []string{"b"},
						Usage:    "background `IMAGE`, repeatable",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    flagClass,
						Aliases: []string{"c"},
						Usage:   "exemplar `IMAGES` of one object class, joined with the path list separator; repeat per class",
					},
					&cli.IntFlag{Name: flagObjectBox, Value: 0, Usage: "object sample square size, 0 samples whole exemplar images"},
					&cli.StringFlag{Name: flagOutput, Aliases: []string{"o"}, Usage: "write the classified image to `FILE`"},
					&cli.BoolFlag{Name: flagOverlay, Usage: "blend the painting over the gray frame with a legend"},
					&cli.BoolFlag{Name: flagANSI, Usage: "print the label grid as ANSI art to stdout"},
					&cli.IntFlag{Name: flagWidth, Usage: "resize FRAME to this width before classifying, keeping its aspect ratio"},
				},
				Action: runClassify,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sessionOptions(c *cli.Context, logger *zap.Logger) []colorseg.SessionOption {
	opts := []colorseg.SessionOption{
		colorseg.WithClassificationBlock(c.Int(flagBlock)),
		colorseg.WithBackgroundTile(c.Int(flagTile)),
		colorseg.WithObjectBox(c.Int(flagObjectBox)),
		colorseg.WithLegend(!c.Bool(flagNoLegend)),
		colorseg.WithSessionLogger(logger),
	}
	if c.IsSet(flagSeed) {
		opts = append(opts, colorseg.WithColorSeed(c.Int64(flagSeed)))
	}
	return opts
}

func runLive(c *cli.Context) (err error) {
	logger, err := newLogger(c.Bool(flagDebug))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	camera, err := capture.OpenCamera(c.Int(flagCamera), c.Int(flagWidth), c.Int(flagHeight))
	if err != nil {
		return err
	}
	window := capture.NewWindow("colorseg")
	defer func() {
		err = multierr.Combine(err, window.Close(), camera.Close())
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	session := colorseg.NewSession(sessionOptions(c, logger)...)
	logger.Info("teaching", zap.Int("block", session.BlockSize), zap.Int("objectBox", session.ObjectBox))
	err = capture.Run(ctx, camera, window, session, logger)
	if classifier := session.Classifier(); classifier != nil {
		frames, blocks, elapsed := classifier.Stats()
		logger.Info("classification stats",
			zap.Int("frames", frames), zap.Int("blocks", blocks), zap.Duration("elapsed", elapsed))
	}
	return err
}

func runClassify(c *cli.Context) error {
	logger, err := newLogger(c.Bool(flagDebug))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if c.NArg() != 1 {
		return errors.New("exactly one FRAME image is required")
	}
	frame, err := imageutil.LoadImage(c.Args().First())
	if err != nil {
		return err
	}
	if w := c.Int(flagWidth); w > 0 && w != frame.Width() {
		frame = imageutil.ResizeToWidth(frame, w, imageutil.InterpolationArea)
		logger.Debug("resized frame", zap.Int("width", frame.Width()), zap.Int("height", frame.Height()))
	}

	session := colorseg.NewSession(sessionOptions(c, logger)...)
	if err := teach(session, c.StringSlice(flagBackground), c.StringSlice(flagClass)); err != nil {
		return err
	}
	if _, err := session.Apply(colorseg.CmdToggleClassification, frame); err != nil {
		return err
	}

	start := time.Now()
	rendered, err := session.Render(frame)
	if err != nil {
		return err
	}
	result := session.LastResult()
	classifier := session.Classifier()
	logClassCounts(logger, result.Labels.Counts(len(classifier.Classes())))
	logger.Info("classified", zap.Int("blocks", len(result.Labels.Labels)), zap.Duration("elapsed", time.Since(start)))

	if out := c.String(flagOutput); out != "" {
		img := result.Output
		if c.Bool(flagOverlay) {
			img = rendered
		}
		if err := imageutil.SaveImage(img, out); err != nil {
			return err
		}
		logger.Info("wrote output", zap.String("path", out))
	}
	if c.Bool(flagANSI) {
		fmt.Print(colorseg.CompressANSI(colorseg.RenderLabelsToAnsi(result.Labels, classifier.Colors())))
	}
	return nil
}

// teach feeds background images and one exemplar image list per object
// class to session.
func teach(session *colorseg.Session, background, classes []string) error {
	images, err := imageutil.LoadImages(background)
	if err != nil {
		return err
	}
	for _, img := range images {
		if _, err := session.Apply(colorseg.CmdAddBackgroundSample, img); err != nil {
			return err
		}
	}

	for i, list := range classes {
		images, err := imageutil.LoadImages(splitList(list))
		if err != nil {
			return errors.Wrapf(err, "class %d", i+1)
		}
		for _, img := range images {
			if _, err := session.Apply(colorseg.CmdAddObjectSample, img); err != nil {
				return errors.Wrapf(err, "class %d", i+1)
			}
		}
		if _, err := session.Apply(colorseg.CmdNextClass, nil); err != nil {
			return errors.Wrapf(err, "class %d", i+1)
		}
	}
	return nil
}

func splitList(list string) []string {
	var out []string
	for _, s := range filepath.SplitList(list) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func logClassCounts(logger *zap.Logger, counts []int) {
	for i, n := range counts {
		logger.Info(colorseg.ClassName(i), zap.Int("blocks", n))
	}
}
