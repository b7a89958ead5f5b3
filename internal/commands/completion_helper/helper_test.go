package completion_helper

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := Out
	Out = buf
	t.Cleanup(func() { Out = prev })
	return buf
}

func TestDefaultFlagComplete(t *testing.T) {
	buf := capture(t)
	cmd := &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}},
			&cli.BoolFlag{Name: "stat"},
		},
	}

	DefaultFlagComplete(context.Background(), cmd)

	assert.Equal(t, "--message\n-m\n--stat\n", buf.String())
}

func TestPrintCandidates(t *testing.T) {
	buf := capture(t)

	PrintCandidates([]string{"alice", "bob@example.com"})

	assert.Equal(t, "alice\nbob@example.com\n", buf.String())
}
