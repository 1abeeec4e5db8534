package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghjez/ba-backend/internal/imaging"
)

func tilesCommand(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "tiles (<width> <height> | <drawing>)",
		Short: "Print the tile grid of a drawing",
		Long: `Print the tile grid for an image size or a drawing. With --out the tile
rasters of the drawing are written as <stem>_tile_<id>.png, the input an
out-of-process detector expects for the labels detector mode.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tiler, err := imaging.NewTiler(a.cfg.Tiler.Size, a.cfg.Tiler.Overlap)
			if err != nil {
				return err
			}

			var (
				img  image.Image
				w, h int
			)
			if len(args) == 2 {
				if w, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid width %q", args[0])
				}
				if h, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid height %q", args[1])
				}
			} else {
				if img, err = imaging.Load(args[0]); err != nil {
					return err
				}
				w, h = img.Bounds().Dx(), img.Bounds().Dy()
			}

			tiles, err := tiler.Tiles(w, h)
			if err != nil {
				return err
			}
			if err := printTiles(cmd, tiler, tiles, w, h); err != nil {
				return err
			}

			if outDir == "" {
				return nil
			}
			if img == nil {
				return fmt.Errorf("--out needs a drawing, not a size")
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", outDir, err)
			}
			rasters := make([]image.Image, len(tiles))
			for i, tile := range tiles {
				rasters[i] = tiler.Extract(img, tile)
			}
			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			paths, err := imaging.WriteTiles(outDir, stem, tiles, rasters)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %d tiles to %s\n", len(paths), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Write tile rasters of the drawing into this directory")
	return cmd
}

func printTiles(cmd *cobra.Command, tiler *imaging.Tiler, tiles []imaging.Tile, w, h int) error {
	cols, rows := tiler.Grid(w, h)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%dx%d image, %d px tiles, overlap %d: %d cols x %d rows\n\n", w, h, tiler.Size, tiler.Overlap, cols, rows)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROW\tCOL\tBOUNDS\tCONTENT\tPADDED")
	for _, t := range tiles {
		padded := ""
		switch {
		case t.PadRight && t.PadBottom:
			padded = "right,bottom"
		case t.PadRight:
			padded = "right"
		case t.PadBottom:
			padded = "bottom"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%dx%d\t%s\n", t.ID, t.Row, t.Col, t.Bounds(), t.Width, t.Height, padded)
	}
	return tw.Flush()
}
