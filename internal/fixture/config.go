package fixture

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/geolingo/geolingo"
	"github.com/joho/godotenv"
)

// Config selects the database the fixture runs against.
type Config struct {
	Driver string
	DSN    string
	Debug  bool
}

// LoadConfig reads GEOLINGO_DRIVER, GEOLINGO_DSN and GEOLINGO_DEBUG. The
// files, .env by default, fill in variables the environment does not set;
// missing files are ignored.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "load %s", file)
		}
	}

	config := Config{
		Driver: os.Getenv("GEOLINGO_DRIVER"),
		DSN:    os.Getenv("GEOLINGO_DSN"),
	}
	if config.Driver == "" {
		config.Driver = "postgres"
	}
	if debug := os.Getenv("GEOLINGO_DEBUG"); debug != "" {
		var err error
		if config.Debug, err = strconv.ParseBool(debug); err != nil {
			return Config{}, errors.Wrap(err, "GEOLINGO_DEBUG")
		}
	}
	switch config.Driver {
	case "postgres", "sqlite3_spatialite", "mysql":
	default:
		return Config{}, errors.Newf("GEOLINGO_DRIVER: unsupported driver %q", config.Driver)
	}
	if config.DSN == "" {
		return Config{}, errors.New("GEOLINGO_DSN is not set")
	}
	return config, nil
}

// Open opens the configured database. The driver must be registered by the
// caller.
func (c Config) Open() (geolingo.Database, error) {
	db, err := geolingo.Open(c.Driver, c.DSN)
	if err != nil {
		return nil, err
	}
	db.SetDebugMode(c.Debug)
	return db, nil
}
