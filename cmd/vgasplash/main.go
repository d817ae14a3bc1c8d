package main

import (
	"fmt"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/vgasplash"
	"github.com/bodgit/vgasplash/vga"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(c.App.ErrWriter)
	}
	return logger
}

func convert(c *cli.Context) error {
	if c.NArg() < 1 {
		if err := cli.ShowAppHelp(c); err != nil {
			return err
		}
		return cli.Exit("", 1)
	}

	filter, err := vgasplash.ParseFilter(c.String("filter"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	var cache *vgasplash.Cache
	if file := c.String("cache"); file != "" {
		if cache, err = vgasplash.NewCache(file); err != nil {
			return cli.Exit(err, 1)
		}
		defer cache.Close()
	}

	m := vgasplash.New(cache, newLogger(c))

	s, err := m.Convert(c.Args().First(), &vgasplash.Options{
		Filter: filter,
		Options: vga.Options{
			Dither: c.Bool("dither"),
			DAC6:   c.Bool("dac6"),
		},
	})
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := s.WriteFiles(c.String("output-dir")); err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Fprintf(c.App.Writer, "Generated %s (%d bytes) and %s (%d bytes)\n", vgasplash.ImageFilename, len(s.Image), vgasplash.PaletteFilename, len(s.Palette))
	fmt.Fprintln(c.App.Writer, "Now run: nasm -f bin stage2.asm -o stage2.bin")

	return nil
}

func preview(c *cli.Context) error {
	if c.NArg() < 1 {
		// Help for a command is looked up from its parent
		if err := cli.ShowCommandHelp(c.Lineage()[1], c.Command.Name); err != nil {
			return err
		}
		return cli.Exit("", 1)
	}

	dir := c.String("dir")

	img, err := os.Open(filepath.Join(dir, vgasplash.ImageFilename))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer img.Close()

	pal, err := os.Open(filepath.Join(dir, vgasplash.PaletteFilename))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer pal.Close()

	m, err := vga.Decode(img, pal, &vga.Options{DAC6: c.Bool("dac6")})
	if err != nil {
		return cli.Exit(err, 1)
	}

	f, err := os.Create(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer f.Close()

	if err := png.Encode(f, m); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func newApp() (*cli.App, error) {
	app := cli.NewApp()

	app.Name = "vgasplash"
	app.Usage = "Convert an image into VGA mode 13h splash screen files"
	app.Version = "1.0.0"
	app.ArgsUsage = "IMAGE"

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Value:   cwd,
			Usage:   "directory to write " + vgasplash.ImageFilename + " and " + vgasplash.PaletteFilename + " to",
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Value:   vgasplash.Lanczos3.String(),
			Usage:   "resampling filter, one of " + strings.Join(vgasplash.FilterNames(), ", "),
		},
		&cli.BoolFlag{
			Name:  "dither",
			Usage: "dither when reducing colors",
		},
		&cli.BoolFlag{
			Name:  "dac6",
			Usage: "write 6-bit palette values for the VGA DAC",
		},
		&cli.StringFlag{
			Name:    "cache",
			EnvVars: []string{"VGASPLASH_CACHE"},
			Usage:   "path to conversion cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = convert

	app.Commands = []*cli.Command{
		{
			Name:        "preview",
			Usage:       "Render existing splash files as a PNG image",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "dir",
					Value: cwd,
					Usage: "directory containing " + vgasplash.ImageFilename + " and " + vgasplash.PaletteFilename,
				},
				&cli.BoolFlag{
					Name:  "dac6",
					Usage: "palette contains 6-bit values",
				},
			},
			Action: preview,
		},
	}

	return app, nil
}

func main() {
	app, err := newApp()
	if err != nil {
		log.Fatal(err)
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
