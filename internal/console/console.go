// Package console reads line commands that drive the animation manager.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/animation"
	"github.com/scheerer/strip-animations/internal/logging"
	"github.com/scheerer/strip-animations/internal/scene"
)

var logger = logging.New("console")

var ErrUnknownCommand = errors.New("unknown command")

// Controller is the part of *animation.Manager the console drives.
type Controller interface {
	Play(a animation.Animation) (uuid.UUID, error)
	Stop(id uuid.UUID) error
	StopAll() int
	SetDefaultColor(s string) error
	Layers() []animation.Layer
}

// Library resolves animation names, see *scene.Scene.
type Library interface {
	Get(key string) (scene.Entry, error)
	Names() []string
}

type Console struct {
	ctl Controller
	lib Library
	out io.Writer
}

func New(ctl Controller, lib Library, out io.Writer) *Console {
	return &Console{ctl: ctl, lib: lib, out: out}
}

const help = `commands:
  play <name|index>   play an animation from the scene
  stop <layer>        stop a layer by id or stack position
  clear               stop every layer
  bg <color>          set the background color
  layers              show playing layers, bottom first
  list                show the scene's animations
  help                show this help
`

// Run executes commands read from in until in is exhausted or ctx is done. Command
// errors are printed and do not end the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if err := c.Exec(line); err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
}

// Exec runs a single command line.
func (c *Console) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	logger.With(zap.String("command", cmd), zap.Strings("args", args)).Debug("Console command")

	switch cmd {
	case "play":
		if len(args) != 1 {
			return errors.New("usage: play <name|index>")
		}
		return c.play(args[0])
	case "stop":
		if len(args) != 1 {
			return errors.New("usage: stop <layer>")
		}
		return c.stop(args[0])
	case "clear":
		fmt.Fprintf(c.out, "stopped %d layers\n", c.ctl.StopAll())
		return nil
	case "bg":
		if len(args) == 0 {
			return errors.New("usage: bg <color>")
		}
		if err := c.ctl.SetDefaultColor(strings.Join(args, " ")); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "background updated")
		return nil
	case "layers":
		c.printLayers()
		return nil
	case "list":
		for i, name := range c.lib.Names() {
			fmt.Fprintf(c.out, "%d\t%s\n", i, name)
		}
		return nil
	case "help", "?":
		fmt.Fprint(c.out, help)
		return nil
	}
	return fmt.Errorf("%w %q, try help", ErrUnknownCommand, cmd)
}

func (c *Console) play(key string) error {
	entry, err := c.lib.Get(key)
	if err != nil {
		return err
	}
	id, err := c.ctl.Play(entry.Animation)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "playing %s as %s\n", entry.Name, id)
	return nil
}

func (c *Console) stop(key string) error {
	id, err := uuid.Parse(key)
	if err != nil {
		layers := c.ctl.Layers()
		i, convErr := strconv.Atoi(key)
		if convErr != nil || i < 0 || i >= len(layers) {
			return fmt.Errorf("%q is neither a layer id nor a position below %d", key, len(layers))
		}
		id = layers[i].ID
	}
	if err := c.ctl.Stop(id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "stopped %s\n", id)
	return nil
}

func (c *Console) printLayers() {
	layers := c.ctl.Layers()
	if len(layers) == 0 {
		fmt.Fprintln(c.out, "no layers playing")
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for i, l := range layers {
		phase := "looping"
		switch {
		case !l.Animation.Looping():
			phase = "one-shot"
		case l.FirstLoop:
			phase = "first loop"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, l.ID, phase, animation.Describe(l.Animation))
	}
	w.Flush()
}
