package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Parley.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`  ____            _            `, "#818cf8"},
		{` |  _ \ __ _ _ __| | ___ _   _ `, "#a78bfa"},
		{` | |_) / _` + "`" + ` | '__| |/ _ \ | | |`, "#c084fc"},
		{` |  __/ (_| | |  | |  __/ |_| |`, "#e879f9"},
		{` |_|   \__,_|_|  |_|\___|\__, |`, "#f472b6"},
		{`                         |___/ `, "#fb7185"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Printf("  v%s\n\n", strings.TrimSpace(version))
}
