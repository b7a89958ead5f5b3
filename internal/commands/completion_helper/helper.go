package completion_helper

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// Out is where completion candidates are written.
var Out io.Writer = os.Stdout

// DefaultFlagComplete prints all flags of the current command to facilitate shell completion.
// This is used to ensure flags are suggested even when the default urfave/cli completion might fail.
func DefaultFlagComplete(_ context.Context, cmd *cli.Command) {
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(Out, "-"+name)
			} else {
				_, _ = fmt.Fprintln(Out, "--"+name)
			}
		}
	}
}

// PrintCandidates prints one completion candidate per line.
func PrintCandidates(candidates []string) {
	for _, c := range candidates {
		_, _ = fmt.Fprintln(Out, c)
	}
}
