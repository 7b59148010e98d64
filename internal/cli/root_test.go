package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dxfio", cmd.Use)
	assert.Contains(t, cmd.Long, "code page")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"info", "audit", "validate", "convert", "new", "dump", "index", "query"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestAuditCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	auditCmd, _, err := cmd.Find([]string{"audit"})
	require.NoError(t, err)

	fixFlag := auditCmd.Flags().Lookup("fix")
	require.NotNil(t, fixFlag)
	assert.Equal(t, "false", fixFlag.DefValue)

	outputFlag := auditCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestIndexAndQueryRequireDB(t *testing.T) {
	for _, name := range []string{"index", "query"} {
		t.Run(name, func(t *testing.T) {
			cmd := NewRootCommand()
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			dbFlag := sub.Flags().Lookup("db")
			require.NotNil(t, dbFlag)
			// --db is required, so default is empty
			assert.Equal(t, "", dbFlag.DefValue)

			_, err = execute(cmd, name, "plan.dxf")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "db")
		})
	}
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	_, err := execute(cmd, "--format", "invalid", "info", "plan.dxf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFile(t *testing.T) {
	path := writeDrawing(t, "plan.dxf", nil)

	t.Run("invalid options file", func(t *testing.T) {
		cfg := writeFile(t, "bad.yaml", "default_version: R99\n")
		cmd := NewRootCommand()
		_, err := execute(cmd, "--config", cfg, "info", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrCodeConfig)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("default version of new drawings", func(t *testing.T) {
		cfg := writeFile(t, "r2000.yaml", "default_version: R2000\n")
		out := t.TempDir() + "/empty.dxf"
		cmd := NewRootCommand()
		output, err := execute(cmd, "--config", cfg, "new", out)
		require.NoError(t, err)
		assert.Contains(t, output, "R2000")
	})
}

func TestVerboseLogsToStderr(t *testing.T) {
	path := writeDrawing(t, "plan.dxf", nil)

	cmd := NewRootCommand()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--verbose", "--format", "json", "info", path})
	require.NoError(t, cmd.Execute())

	decodeResponse(t, stdout.String(), nil)
	assert.Contains(t, stderr.String(), "Loaded")
}
