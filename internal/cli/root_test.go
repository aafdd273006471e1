package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "palimpsest", cmd.Use)
	assert.Contains(t, cmd.Long, "update logs")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"docs", "meta", "clear"}

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
}

func TestDocsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	docsCmd, _, err := cmd.Find([]string{"docs"})
	require.NoError(t, err)

	dbFlag := docsCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	// --db is required, so default is empty
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestMetaCommandStructure(t *testing.T) {
	cmd := NewRootCommand()
	metaCmd, _, err := cmd.Find([]string{"meta"})
	require.NoError(t, err)

	for _, sub := range []string{"get", "set", "del"} {
		t.Run(sub, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{"meta", sub})
			require.NoError(t, err)
			assert.Equal(t, sub, subCmd.Name())
		})
	}

	dbFlag := metaCmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)

	docFlag := metaCmd.PersistentFlags().Lookup("doc")
	require.NotNil(t, docFlag)
}

func TestClearCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	clearCmd, _, err := cmd.Find([]string{"clear"})
	require.NoError(t, err)

	dbFlag := clearCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)

	dirFlag := clearCmd.Flags().Lookup("dir")
	require.NotNil(t, dirFlag)
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
	cmd.SetArgs([]string{"--format", "invalid", "docs", "--db", "missing.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
