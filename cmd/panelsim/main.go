package main

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"time"

	"github.com/ampliui/st7789"
	"github.com/ampliui/st7789/internal/demo"
	"github.com/ampliui/st7789/lcdsim"
	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/gpio"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// backlightDuty scales a 1-255 level to a PWM duty cycle.
func backlightDuty(level uint) (gpio.Duty, error) {
	if level < 1 || level > 255 {
		return 0, fmt.Errorf("backlight level %d outside 1-255", level)
	}
	return gpio.Duty(level * uint(gpio.DutyMax) / 255), nil
}

func newSimulatorFromFlags(c *cli.Context) (*simulator, error) {
	duty := st7789.DefaultBacklight
	if c.IsSet("backlight") {
		var err error
		if duty, err = backlightDuty(c.Uint("backlight")); err != nil {
			return nil, err
		}
	}
	return newSimulator(newLogger(c), c.Int("max-tx"), duty)
}

func screenFromFlags(c *cli.Context) *demo.Screen {
	s := &demo.Screen{
		VolumeDB:  c.Int("volume"),
		Muted:     c.Bool("muted"),
		Selected:  c.Int("input"),
		BalanceDB: c.Int("balance"),
	}
	if inputs := c.StringSlice("inputs"); len(inputs) > 0 {
		s.Inputs = inputs
	}
	return s
}

func create(name string) (*os.File, error) {
	if name == "-" {
		return os.Stdout, nil
	}
	return os.Create(name)
}

func main() {
	app := cli.NewApp()

	app.Name = "panelsim"
	app.Usage = "Render the amplifier front panel on a simulated ST7789"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:    "max-tx",
			EnvVars: []string{"PANELSIM_MAX_TX"},
			Value:   4096,
			Usage:   "largest SPI transfer in bytes, 0 for unlimited",
		},
		&cli.UintFlag{
			Name:    "backlight",
			EnvVars: []string{"PANELSIM_BACKLIGHT"},
			Usage:   "backlight level 1-255",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	screenFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "volume",
			Value: 30,
			Usage: "volume in dB, 0-63",
		},
		&cli.BoolFlag{
			Name:  "muted",
			Usage: "show the mute icon instead of the volume",
		},
		&cli.IntFlag{
			Name:  "input",
			Usage: "index of the selected input",
		},
		&cli.StringSliceFlag{
			Name:    "inputs",
			EnvVars: []string{"PANELSIM_INPUTS"},
			Usage:   "input labels from top to bottom",
		},
		&cli.IntFlag{
			Name:  "balance",
			Usage: "left/right balance in dB, -5 to 5",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "render",
			Usage:     "Render one screen to a PNG file",
			ArgsUsage: "FILE",
			Flags:     screenFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				sim, err := newSimulatorFromFlags(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer sim.close()

				screen := screenFromFlags(c)
				if err := sim.validate(screen); err != nil {
					return cli.Exit(err, 1)
				}
				if err := sim.show(screen); err != nil {
					return cli.Exit(err, 1)
				}

				f, err := create(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				if err := png.Encode(f, sim.snapshot()); err != nil {
					return cli.Exit(err, 1)
				}
				return nil
			},
		},
		{
			Name:      "record",
			Usage:     "Record a volume sweep to an animated GIF",
			ArgsUsage: "FILE",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  "frames",
					Value: 20,
					Usage: "number of frames",
				},
				&cli.IntFlag{
					Name:  "to",
					Value: demo.MaxVolumeDB,
					Usage: "volume in dB of the last frame",
				},
				&cli.DurationFlag{
					Name:  "delay",
					Value: 100 * time.Millisecond,
					Usage: "time each frame is shown",
				},
			}, screenFlags...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				sim, err := newSimulatorFromFlags(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer sim.close()

				screen := screenFromFlags(c)
				last := *screen
				last.VolumeDB = c.Int("to")
				for _, end := range []*demo.Screen{screen, &last} {
					if err := sim.validate(end); err != nil {
						return cli.Exit(err, 1)
					}
				}

				rec := &lcdsim.Recorder{}
				for _, v := range sweep(screen.VolumeDB, c.Int("to"), c.Int("frames")) {
					screen.VolumeDB = v
					if err := sim.show(screen); err != nil {
						return cli.Exit(err, 1)
					}
					rec.Add(sim.snapshot(), c.Duration("delay"))
				}

				f, err := create(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				if err := rec.Encode(f); err != nil {
					return cli.Exit(err, 1)
				}
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
