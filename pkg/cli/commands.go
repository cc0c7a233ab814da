// Package cli: interactive terminal driver for the edit pipeline.
//
// This file is the authoritative registry of operator commands. Keep this
// list synchronized with the request types in pkg/session so callers (help
// text, fzf selection, prompts) can read a single source of truth.
package cli

import (
	"fmt"
	"strconv"

	"github.com/Fepozopo/pixelview/pkg/session"
)

// ArgSpec describes a single argument for a command. Fields are textual
// and intended for help/validation UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "bool", "string"
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
	Preview     bool   // command supports a preview pass before commit
}

// Commands is the authoritative list of operator commands.
var Commands = []CommandSpec{
	{
		Name: "crop",
		Args: []ArgSpec{
			{"x", "float", true, "0", "left offset in percent"},
			{"y", "float", true, "0", "top offset in percent"},
			{"width", "float", true, "100", "width in percent"},
			{"height", "float", true, "100", "height in percent"},
		},
		Usage:       "crop <x%> <y%> <width%> <height%>",
		Description: "Crop to a rectangle given in percent of the source.",
		Preview:     true,
	},
	{
		Name: "resize",
		Args: []ArgSpec{
			{"width", "float", true, "", "output width (pixels, or percent)"},
			{"height", "float", true, "", "output height (pixels, or percent)"},
			{"percent", "bool", false, "false", "treat width/height as percentages"},
		},
		Usage:       "resize <width> <height> [percent]",
		Description: "Resize with a cubic kernel, ignoring aspect ratio.",
		Preview:     true,
	},
	{
		Name:        "rotate",
		Args:        []ArgSpec{{"degrees", "float", true, "", "clockwise degrees in [-180,180]"}},
		Usage:       "rotate <degrees>",
		Description: "Rotate clockwise; the canvas grows with transparent corners.",
		Preview:     true,
	},
	{
		Name: "brightness",
		Args: []ArgSpec{
			{"brightness", "float", true, "1", "lightness multiplier"},
			{"contrast", "float", true, "1", "contrast factor around 50% gray"},
		},
		Usage:       "brightness <brightness> <contrast>",
		Description: "Adjust brightness and contrast; 1 is identity for both.",
		Preview:     true,
	},
	{
		Name: "hsl",
		Args: []ArgSpec{
			{"hue", "float", true, "0", "hue shift in degrees"},
			{"saturation", "float", true, "1", "saturation multiplier"},
			{"lightness", "float", true, "0", "lightness delta"},
		},
		Usage:       "hsl <hue> <saturation> <lightness>",
		Description: "Shift hue, scale saturation, add lightness.",
		Preview:     true,
	},
	{
		Name:        "tint",
		Args:        []ArgSpec{{"color", "string", true, "", "hex color like #ff8800"}},
		Usage:       "tint <color>",
		Description: "Multiply every pixel by a hex color.",
		Preview:     true,
	},
	{
		Name: "blur",
		Args: []ArgSpec{
			{"blur", "float", true, "0", "gaussian blur sigma"},
			{"sharpen", "float", true, "0", "sharpen sigma, 0 to skip"},
		},
		Usage:       "blur <blur> <sharpen>",
		Description: "Gaussian blur followed by an unsharp pass.",
		Preview:     true,
	},
	{
		Name:        "binarize",
		Args:        []ArgSpec{{"threshold", "int", true, "128", "luminance threshold, 1-255"}},
		Usage:       "binarize <threshold>",
		Description: "Hard-threshold to black and white.",
		Preview:     true,
	},
	{
		Name:        "pixelate",
		Args:        []ArgSpec{{"factor", "int", true, "8", "block size factor, 1 = identity"}},
		Usage:       "pixelate <factor>",
		Description: "Block the image by downsampling then nearest-neighbor upsampling.",
	},
	{
		Name:        "flipX",
		Args:        []ArgSpec{},
		Usage:       "flipX",
		Description: "Mirror about the vertical axis.",
	},
	{
		Name:        "flipY",
		Args:        []ArgSpec{},
		Usage:       "flipY",
		Description: "Mirror about the horizontal axis.",
	},
	{
		Name:        "invert",
		Args:        []ArgSpec{},
		Usage:       "invert",
		Description: "Negate every color channel, leaving alpha alone.",
	},
	{
		Name: "gifEffects",
		Args: []ArgSpec{
			{"speed", "float", true, "1", "playback speed multiplier"},
			{"reverse", "bool", false, "false", "reverse frame order"},
			{"transparency", "bool", false, "false", "key out a color"},
			{"transparentColor", "string", false, "#000000", "hex color to key out"},
		},
		Usage:       "gifEffects <speed> [reverse] [transparency] [color]",
		Description: "Re-time animated GIFs; non-GIF images are left alone.",
	},
}

// FindCommand returns the spec for name, if registered.
func FindCommand(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}

// BuildRequest assembles the session request for an operator command from
// prompted string arguments. gifEffects is not buildable here; it goes
// through BuildGIFEffects because it bypasses the operator dispatch.
func BuildRequest(name string, args map[string]string) (session.Request, error) {
	switch name {
	case "crop":
		x, err := argFloat(args, "x")
		if err != nil {
			return nil, err
		}
		y, err := argFloat(args, "y")
		if err != nil {
			return nil, err
		}
		w, err := argFloat(args, "width")
		if err != nil {
			return nil, err
		}
		h, err := argFloat(args, "height")
		if err != nil {
			return nil, err
		}
		return session.CropRequest{X: x, Y: y, Width: w, Height: h}, nil
	case "resize":
		w, err := argFloat(args, "width")
		if err != nil {
			return nil, err
		}
		h, err := argFloat(args, "height")
		if err != nil {
			return nil, err
		}
		return session.ResizeRequest{Width: w, Height: h, Percent: argBool(args, "percent")}, nil
	case "rotate":
		d, err := argFloat(args, "degrees")
		if err != nil {
			return nil, err
		}
		return session.RotateRequest{Degrees: d}, nil
	case "brightness":
		b, err := argFloat(args, "brightness")
		if err != nil {
			return nil, err
		}
		c, err := argFloat(args, "contrast")
		if err != nil {
			return nil, err
		}
		return session.BrightnessRequest{Brightness: b, Contrast: c}, nil
	case "hsl":
		h, err := argFloat(args, "hue")
		if err != nil {
			return nil, err
		}
		s, err := argFloat(args, "saturation")
		if err != nil {
			return nil, err
		}
		l, err := argFloat(args, "lightness")
		if err != nil {
			return nil, err
		}
		return session.HSLRequest{Hue: h, Saturation: s, Lightness: l}, nil
	case "tint":
		return session.TintRequest{Color: args["color"]}, nil
	case "blur":
		b, err := argFloat(args, "blur")
		if err != nil {
			return nil, err
		}
		s, err := argFloat(args, "sharpen")
		if err != nil {
			return nil, err
		}
		return session.BlurRequest{Blur: b, Sharpen: s}, nil
	case "binarize":
		t, err := argInt(args, "threshold")
		if err != nil {
			return nil, err
		}
		return session.BinarizeRequest{Threshold: t}, nil
	case "pixelate":
		f, err := argInt(args, "factor")
		if err != nil {
			return nil, err
		}
		return session.PixelateRequest{Factor: f}, nil
	case "flipX":
		return session.FlipXRequest{}, nil
	case "flipY":
		return session.FlipYRequest{}, nil
	case "invert":
		return session.InvertRequest{}, nil
	}
	return nil, fmt.Errorf("unknown command: %s", name)
}

// BuildGIFEffects assembles the gif-effects request from prompted arguments.
func BuildGIFEffects(args map[string]string) (session.GIFEffectsRequest, error) {
	speed, err := argFloat(args, "speed")
	if err != nil {
		return session.GIFEffectsRequest{}, err
	}
	return session.GIFEffectsRequest{
		Speed:            speed,
		Reverse:          argBool(args, "reverse"),
		Transparency:     argBool(args, "transparency"),
		TransparentColor: args["transparentColor"],
	}, nil
}

func argFloat(args map[string]string, key string) (float64, error) {
	v, err := strconv.ParseFloat(args[key], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: expected a number, got %q", key, args[key])
	}
	return v, nil
}

func argInt(args map[string]string, key string) (int, error) {
	v, err := strconv.Atoi(args[key])
	if err != nil {
		return 0, fmt.Errorf("%s: expected an integer, got %q", key, args[key])
	}
	return v, nil
}

func argBool(args map[string]string, key string) bool {
	v, err := strconv.ParseBool(args[key])
	return err == nil && v
}
