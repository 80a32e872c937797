package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	output       = termenv.NewOutput(os.Stdout, termenv.WithProfile(termenv.ANSI))
	colorEnabled = !termenv.EnvNoColor() && isTerminal(os.Stdout)
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func EnableColor(enable bool) {
	colorEnabled = enable
}

func IsColorEnabled() bool {
	return colorEnabled
}

func Colorize(color termenv.Color, text string) string {
	if !colorEnabled {
		return text
	}
	return output.String(text).Foreground(color).String()
}

func RedText(text string) string {
	return Colorize(termenv.ANSIRed, text)
}

func BrightRedText(text string) string {
	return Colorize(termenv.ANSIBrightRed, text)
}

func GreenText(text string) string {
	return Colorize(termenv.ANSIGreen, text)
}

func YellowText(text string) string {
	return Colorize(termenv.ANSIYellow, text)
}

func CyanText(text string) string {
	return Colorize(termenv.ANSICyan, text)
}

func GrayText(text string) string {
	return Colorize(termenv.ANSIBrightBlack, text)
}

func BoldText(text string) string {
	if !colorEnabled {
		return text
	}
	return output.String(text).Bold().String()
}

func Error(message string) string {
	if !colorEnabled {
		return message
	}
	return BrightRedText("Error: ") + message
}

func Warning(message string) string {
	if !colorEnabled {
		return message
	}
	return YellowText("Warning: ") + message
}

func Success(message string) string {
	if !colorEnabled {
		return message
	}
	return GreenText("Success: ") + message
}

func Highlight(text, highlight string) string {
	if !colorEnabled || highlight == "" {
		return text
	}
	return strings.ReplaceAll(text, highlight, YellowText(highlight))
}

// ErrorAtLine formats a compile error with the offending source line
func ErrorAtLine(line int, message, source string) string {
	if !colorEnabled {
		return fmt.Sprintf("Error at line %d: %s\n  %s", line, message, source)
	}

	return fmt.Sprintf("%s at line %s: %s\n  %s",
		BrightRedText(BoldText("Error")),
		CyanText(fmt.Sprint(line)),
		message,
		GrayText(source))
}
