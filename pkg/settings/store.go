package settings

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

// viperStore wraps a viper instance bound to a single config file and
// persists every mutation immediately.
type viperStore struct {
	v    *viper.Viper
	path string
}

func openStore(path string) (*viperStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("dmpcatalogue.url", DefaultAPIRoot)
	v.SetDefault("dmpcatalogue.locale", DefaultLocale)
	v.SetDefault("dmpcatalogue.datasource_load_order", DefaultLoadOrder)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &viperStore{v: v, path: path}, nil
}

func (s *viperStore) getString(key string) string {
	return s.v.GetString(key)
}

func (s *viperStore) getStringSlice(key string) []string {
	return s.v.GetStringSlice(key)
}

func (s *viperStore) getBool(key string) bool {
	return s.v.GetBool(key)
}

func (s *viperStore) set(key string, value any) error {
	s.v.Set(key, value)
	return s.v.WriteConfigAs(s.path)
}
