package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, name string) *cli.Command {
	t.Helper()
	for _, cmd := range newApp().Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findIntFlag(t *testing.T, cmd *cli.Command, name string) *cli.IntFlag {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("int flag %q not found on %q", name, cmd.Name)
	return nil
}

func TestReindexCommandFlags(t *testing.T) {
	t.Run("db is required", func(t *testing.T) {
		err := newApp().Run([]string{"candidex", "reindex"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("batch-size has default value of 100", func(t *testing.T) {
		cmd := findCommand(t, "reindex")
		assert.Equal(t, 100, findIntFlag(t, cmd, "batch-size").Value)
	})

	t.Run("report-interval has default value of 100", func(t *testing.T) {
		cmd := findCommand(t, "reindex")
		assert.Equal(t, 100, findIntFlag(t, cmd, "report-interval").Value)
	})

	t.Run("max-retries has default value of 3", func(t *testing.T) {
		cmd := findCommand(t, "reindex")
		assert.Equal(t, 3, findIntFlag(t, cmd, "max-retries").Value)
	})

	t.Run("parallelism has default value of 4", func(t *testing.T) {
		cmd := findCommand(t, "reindex")
		assert.Equal(t, 4, findIntFlag(t, cmd, "parallelism").Value)
	})

	t.Run("resume defaults to off", func(t *testing.T) {
		cmd := findCommand(t, "reindex")
		var resumeFlag *cli.BoolFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.BoolFlag); ok && f.Name == "resume" {
				resumeFlag = f
				break
			}
		}
		require.NotNil(t, resumeFlag)
		assert.False(t, resumeFlag.Value)
	})
}

func TestSweepCommandFlags(t *testing.T) {
	t.Run("db is required", func(t *testing.T) {
		err := newApp().Run([]string{"candidex", "sweep"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("limit defaults to refresh all", func(t *testing.T) {
		cmd := findCommand(t, "sweep")
		assert.Equal(t, 0, findIntFlag(t, cmd, "limit").Value)
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"candidex", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"candidex", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"candidex", "--log-level", "bogus"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "bogus")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newApp().Run([]string{"candidex", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}
