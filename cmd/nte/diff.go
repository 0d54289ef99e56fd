package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

func printDiff(diff string) {
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			color.Red(line)
		} else if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			color.Green(line)
		} else if strings.HasPrefix(line, "@@") {
			color.Cyan(line)
		} else {
			fmt.Println(line)
		}
	}
}
