package descriptor

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted for unset descriptor values.
const (
	EnvInstallPath      = "IKVM_PATH"
	EnvExecutable       = "IKVMC_PATH"
	EnvBaseLibraryPath  = "IKVM_DLL_PATH"
	EnvPublishAccessKey = "IKVM_PUBLISH_ACCESS_KEY"
	EnvPublishSecretKey = "IKVM_PUBLISH_SECRET_KEY"
)

// Env looks up fallback values. The process environment wins over the
// .env file; an empty value counts as unset.
type Env struct {
	file   map[string]string
	getenv func(string) string
}

// LoadEnv reads the optional .env file at path. A missing file is not an
// error. getenv may be nil to use os.Getenv.
func LoadEnv(path string, getenv func(string) string) (Env, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := Env{file: map[string]string{}, getenv: getenv}
	if path == "" {
		return env, nil
	}

	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return env, nil
	}
	if err != nil {
		return env, err
	}
	env.file = vars
	return env, nil
}

// Get returns the value for key, or "".
func (e Env) Get(key string) string {
	if e.getenv != nil {
		if v := e.getenv(key); v != "" {
			return v
		}
	}
	return e.file[key]
}

func (e Env) orDefault(value, key string) string {
	if value != "" {
		return value
	}
	return e.Get(key)
}
