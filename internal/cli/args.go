package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// keepNegativeNumbers rewrites args so that negative numbers, such as a
// southern latitude, reach the subcommand as positional arguments instead of
// being parsed as shorthand flags. The command path and flags stay in front;
// the positional arguments follow a "--" terminator in their original order.
func keepNegativeNumbers(root *cobra.Command, args []string) []string {
	if !hasNegativeNumber(args) {
		return args
	}
	cmd, _, err := root.Find(args)
	if err != nil || cmd == root {
		return args
	}
	depth := len(strings.Fields(cmd.CommandPath())) - 1

	var path, flags, positional []string
scan:
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			break scan
		case isNegativeNumber(arg):
			positional = append(positional, arg)
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			flags = append(flags, arg)
			if flagTakesValue(cmd, arg) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		case len(path) < depth:
			path = append(path, arg)
		default:
			positional = append(positional, arg)
		}
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, path...)
	out = append(out, flags...)
	out = append(out, "--")
	return append(out, positional...)
}

func hasNegativeNumber(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if isNegativeNumber(arg) {
			return true
		}
	}
	return false
}

func isNegativeNumber(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return false
	}
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}

// flagTakesValue reports whether arg names a flag whose value is the next argument
func flagTakesValue(cmd *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	local, inherited := cmd.Flags(), cmd.InheritedFlags()

	switch {
	case strings.HasPrefix(arg, "--"):
		name := arg[2:]
		if f := local.Lookup(name); f != nil {
			return f.NoOptDefVal == ""
		}
		if f := inherited.Lookup(name); f != nil {
			return f.NoOptDefVal == ""
		}
	case len(arg) == 2:
		name := arg[1:]
		if f := local.ShorthandLookup(name); f != nil {
			return f.NoOptDefVal == ""
		}
		if f := inherited.ShorthandLookup(name); f != nil {
			return f.NoOptDefVal == ""
		}
	}
	return false
}
