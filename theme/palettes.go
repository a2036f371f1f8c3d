package theme

import "github.com/fwojciec/logcolor"

// Names of the built-in palettes.
const (
	DefaultName = "default"
	NoneName    = "none"
	MonokaiName = "monokai"
	MochaName   = "catppuccin-mocha"
	LatteName   = "catppuccin-latte"
)

type styles = map[string]logcolor.StyleSpec

func sh(s string) logcolor.StyleSpec { return logcolor.Shorthand(s) }

// Default returns the palette used when no parent theme is named.
func Default() logcolor.Palette {
	return logcolor.Palette{
		Name:        DefaultName,
		Description: "Named ANSI colors for any terminal",
		Styles: styles{
			"timestamp":          sh("cyan"),
			"timestampSecondary": sh("blue"),
			"relativeTime":       sh("gray"),

			"logLevel.fatal": sh("bgRed|white|bold"),
			"logLevel.error": sh("red|bold"),
			"logLevel.warn":  sh("yellow"),
			"logLevel.info":  sh("green"),
			"logLevel.debug": sh("gray"),
			"logLevel.trace": sh("gray"),

			"string":         sh("green"),
			"quotedString":   sh("green"),
			"stringError":    sh("red"),
			"stringWarning":  sh("yellow"),
			"stringSuccess":  sh("green"),
			"escapeSequence": sh("yellow"),

			"number":    sh("yellow"),
			"boolean":   sh("yellow"),
			"null":      sh("gray"),
			"undefined": sh("gray"),
			"nan":       sh("yellow"),
			"infinity":  sh("yellow"),

			"ipAddress":    sh("cyan"),
			"ipAddress_v4": sh("cyan"),
			"ipAddress_v6": sh("magenta"),
			"url":          sh("blue|underline"),

			"httpMethod":        sh("yellow|bold"),
			"httpPath":          sh("cyan"),
			"httpStatus2xx":     sh("green"),
			"httpStatus3xx":     sh("cyan"),
			"httpStatus4xx":     sh("yellow"),
			"httpStatus5xx":     sh("red|bold"),
			"httpStatusDefault": sh("white"),

			"filename":            sh("cyan"),
			"lineNumber":          sh("yellow"),
			"columnNumber":        sh("gray"),
			"sourceInfo_filename": sh("cyan|underline"),

			"identifier":         sh("white"),
			"keyword":            sh("magenta"),
			"symbol":             sh("gray"),
			"keyValueKey":        sh("cyan"),
			"keyValueEquals":     sh("gray"),
			"objectArrayPattern": sh("gray"),
			"ellipsis":           sh("gray"),
		},
	}
}

// None returns an empty palette. Resolving against it styles only what the
// overrides define.
func None() logcolor.Palette {
	return logcolor.Palette{
		Name:        NoneName,
		Description: "No colors",
		Styles:      styles{},
	}
}

// Monokai returns a truecolor palette in the Monokai scheme.
func Monokai() logcolor.Palette {
	const (
		pink   = "#f92672"
		green  = "#a6e22e"
		yellow = "#e6db74"
		orange = "#fd971f"
		purple = "#ae81ff"
		cyan   = "#66d9ef"
		white  = "#f8f8f2"
		muted  = "#75715e"
	)
	return logcolor.Palette{
		Name:        MonokaiName,
		Description: "Monokai truecolor scheme",
		Styles: styles{
			"timestamp":          sh(pink),
			"timestampSecondary": sh(green),
			"relativeTime":       sh(cyan + "|dim"),

			"logLevel.fatal": sh(pink + "|bold|underline"),
			"logLevel.error": sh(pink),
			"logLevel.warn":  sh(yellow),
			"logLevel.info":  sh(cyan),
			"logLevel.debug": sh(muted),
			"logLevel.trace": sh(muted),

			"string":         sh(yellow),
			"stringError":    sh(pink),
			"escapeSequence": sh(orange),

			"number":    sh(purple),
			"boolean":   sh(purple),
			"null":      sh(purple),
			"undefined": sh(purple),
			"nan":       sh(pink),
			"infinity":  sh(purple),

			"ipAddress": sh(purple),
			"url":       sh(cyan + "|underline"),

			"httpMethod":        sh(pink + "|bold"),
			"httpStatus2xx":     sh(green),
			"httpStatus3xx":     sh(yellow),
			"httpStatus4xx":     sh(orange),
			"httpStatus5xx":     sh(pink + "|bold"),
			"httpStatusDefault": sh(white),

			"filename":     sh(cyan),
			"lineNumber":   sh(green),
			"columnNumber": sh(muted),

			"keyword":            sh(pink),
			"identifier":         sh(white),
			"symbol":             sh(white),
			"ellipsis":           sh(white),
			"keyValueKey":        sh(cyan),
			"keyValueEquals":     sh(muted),
			"objectArrayPattern": sh(muted),
		},
	}
}

// Mocha returns a palette for dark backgrounds using Catppuccin Mocha colors.
func Mocha() logcolor.Palette {
	return catppuccin(MochaName, "Catppuccin Mocha, for dark backgrounds", flavor{
		text:     "#cdd6f4",
		subtext:  "#a6adc8",
		overlay:  "#6c7086",
		surface:  "#9399b2",
		red:      "#f38ba8",
		green:    "#a6e3a1",
		yellow:   "#f9e2af",
		peach:    "#fab387",
		blue:     "#89b4fa",
		sky:      "#89dceb",
		mauve:    "#cba6f7",
		emphasis: "#1e1e2e",
	})
}

// Latte returns a palette for light backgrounds using Catppuccin Latte colors.
func Latte() logcolor.Palette {
	return catppuccin(LatteName, "Catppuccin Latte, for light backgrounds", flavor{
		text:     "#4c4f69",
		subtext:  "#6c6f85",
		overlay:  "#9ca0b0",
		surface:  "#6c6f85",
		red:      "#d20f39",
		green:    "#40a02b",
		yellow:   "#df8e1d",
		peach:    "#fe640b",
		blue:     "#1e66f5",
		sky:      "#04a5e5",
		mauve:    "#8839ef",
		emphasis: "#ffffff",
	})
}

// flavor holds the Catppuccin colors a palette is built from.
type flavor struct {
	text, subtext, overlay, surface     string
	red, green, yellow, peach, blue, sky string
	mauve, emphasis                     string
}

func catppuccin(name, description string, f flavor) logcolor.Palette {
	return logcolor.Palette{
		Name:        name,
		Description: description,
		Styles: styles{
			"timestamp":          sh(f.blue),
			"timestampSecondary": sh(f.sky),
			"relativeTime":       sh(f.overlay),

			"logLevel.fatal": logcolor.Record(logcolor.StyleRecord{Color: f.emphasis, Background: f.red, Bold: true}),
			"logLevel.error": sh(f.red + "|bold"),
			"logLevel.warn":  sh(f.yellow),
			"logLevel.info":  sh(f.green),
			"logLevel.debug": sh(f.overlay),
			"logLevel.trace": sh(f.overlay),

			"string":         sh(f.green),
			"stringError":    sh(f.red),
			"stringWarning":  sh(f.yellow),
			"escapeSequence": sh(f.peach),

			"number":    sh(f.peach),
			"boolean":   sh(f.peach),
			"null":      sh(f.overlay),
			"undefined": sh(f.overlay),

			"ipAddress":    sh(f.sky),
			"ipAddress_v6": sh(f.mauve),
			"url":          logcolor.Record(logcolor.StyleRecord{Color: f.blue, Underline: true}),

			"httpMethod":        sh(f.mauve + "|bold"),
			"httpPath":          sh(f.sky),
			"httpStatus2xx":     sh(f.green),
			"httpStatus3xx":     sh(f.sky),
			"httpStatus4xx":     sh(f.yellow),
			"httpStatus5xx":     sh(f.red + "|bold"),
			"httpStatusDefault": sh(f.text),

			"filename":     sh(f.yellow),
			"lineNumber":   sh(f.peach),
			"columnNumber": sh(f.overlay),

			"keyword":            sh(f.mauve),
			"identifier":         sh(f.text),
			"symbol":             sh(f.surface),
			"ellipsis":           sh(f.surface),
			"keyValueKey":        sh(f.blue),
			"keyValueEquals":     sh(f.surface),
			"objectArrayPattern": sh(f.subtext),
		},
	}
}
