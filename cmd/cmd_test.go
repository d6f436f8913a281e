package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/rbfront/ast"
	"github.com/rubiojr/rbfront/frontend"
	"github.com/rubiojr/rbfront/parser"
	"github.com/rubiojr/rbfront/source"
)

// runConfiguration parses args with the shared parse flags and returns
// the resulting configuration.
func runConfiguration(t *testing.T, args ...string) (parser.Configuration, error) {
	t.Helper()
	var cfg parser.Configuration
	var cfgErr error
	c := &cli.Command{
		Name:  "test",
		Flags: parseFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, cfgErr = configuration(cmd)
			return nil
		},
	}
	require.NoError(t, c.Run(context.Background(), append([]string{"test"}, args...)))
	return cfg, cfgErr
}

func TestConfigurationFromFlags(t *testing.T) {
	cfg, err := runConfiguration(t, "--line", "3", "--encoding", "latin1", "--save-data", "--eval")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LineNumber())
	assert.Equal(t, source.ISO88591, cfg.DefaultEncoding())
	assert.True(t, cfg.IsSaveData())
	assert.True(t, cfg.IsEvalParse())
}

func TestConfigurationFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parse.toml")
	require.NoError(t, os.WriteFile(path, []byte("line_number = 9\nsave_data = true\n"), 0o644))

	cfg, err := runConfiguration(t, "--config", path, "--line", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.LineNumber())
	assert.True(t, cfg.IsSaveData(), "unset flags keep the file's values")
}

func TestConfigurationBadEncoding(t *testing.T) {
	_, err := runConfiguration(t, "--encoding", "klingon")
	assert.Error(t, err)
}

func TestParseFileAndPrintData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.rb")
	require.NoError(t, os.WriteFile(path, []byte("p 1\n__END__\npayload\n"), 0o644))

	d := frontend.NewDriver(nil, nil)
	root, err := parseFile(d, path, parser.NewConfiguration().WithSaveData(true))
	require.NoError(t, err)
	assert.Len(t, root.Body.Statements, 1)

	var out bytes.Buffer
	require.NoError(t, printData(d.Env, &out))
	assert.Equal(t, "__END__\npayload\n", out.String())
}

func TestPrintDataWithoutData(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printData(frontend.NewEnvironment(), &out))
	assert.Empty(t, out.String())
}

func TestParseFileMissing(t *testing.T) {
	d := frontend.NewDriver(nil, nil)
	_, err := parseFile(d, filepath.Join(t.TempDir(), "nope.rb"), parser.NewConfiguration())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRewritesDedupAdjacentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.rb")
	require.NoError(t, os.WriteFile(path, []byte("x = {a: 1, a: 2, b: 3}\ny = {a: 1, b: 2, a: 3}\n"), 0o644))

	root, err := parseFile(frontend.NewDriver(nil, nil), path, parser.NewConfiguration())
	require.NoError(t, err)
	root = rewrites.Transform(root)

	hashes := ast.Hashes(root)
	require.Len(t, hashes, 2)
	assert.Equal(t, 2, hashes[0].Len())
	assert.Equal(t, 3, hashes[1].Len(), "non-adjacent duplicates keep their order")
}
