package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type smtp struct {
	Server string `json:"server"`
	Port   int    `json:"port"`
}

type testConfig struct {
	StorePath string `json:"store_path"`
	Timeout   int    `json:"timeout_seconds"`
	Smtp      smtp   `json:"smtp"`
}

func write(t testing.TB, name, contents string) {
	err := os.WriteFile(name, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalName("config.json5"))
	require.Equal(t, filepath.Join("a", "b.local.json"), LocalName(filepath.Join("a", "b.json")))
	require.Equal(t, "config.local", LocalName("config"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	write(t, name, `{
		// comments are allowed
		"store_path": "userdata.dat",
		"timeout_seconds": 10,
		"smtp": { "server": "smtp.example.com", "port": 25 },
	}`)
	write(t, LocalName(name), `{ "timeout_seconds": 30, "smtp": { "port": 465 } }`)

	config, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, testConfig{
		StorePath: "userdata.dat",
		Timeout:   30,
		Smtp:      smtp{Server: "smtp.example.com", Port: 465},
	}, config)
}

func TestReadWithDefaults(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	defaults := testConfig{StorePath: "userdata.dat", Timeout: 10}

	config, err := ReadWithDefaults(name, defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, defaults, config)

	write(t, name, `{ "store_path": "/tmp/other.dat" }`)
	config, err = ReadWithDefaults(name, defaults)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "/tmp/other.dat", config.StorePath)
	require.Equal(t, 10, config.Timeout)

	write(t, name, `{ "store_path": `)
	_, err = ReadWithDefaults(name, defaults)
	require.Error(t, err)
}
