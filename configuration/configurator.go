// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package configuration

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

type Params struct {
	// Path to yaml config file
	ConfigPath string
	// Prefix for environment variables
	EnvPrefix string
	// Custom viper decoding hooks
	ViperHooks []mapstructure.DecodeHookFunc
}

// Load reads config file into target (a pointer to a config struct).
// Environment variables override file values. Every field of the struct has to be
// present in the file and no unknown prefixed variable may be set.
func Load(params Params, target interface{}) error {
	if params.EnvPrefix == "" {
		return errors.New("EnvPrefix should be defined")
	}
	if reflect.ValueOf(target).Kind() != reflect.Ptr {
		return errors.New("target should be a pointer to config struct")
	}

	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(params.EnvPrefix)

	v.SetConfigFile(params.ConfigPath)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to load config")
	}
	hooks := append(params.ViperHooks, mapstructure.StringToTimeDurationHookFunc(), mapstructure.StringToSliceHookFunc(","))
	err := v.UnmarshalExact(target, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(hooks...)))
	if err != nil {
		return errors.Wrapf(err, "failed to unmarshal config file into configuration structure")
	}

	keys, err := checkAllValuesIsSet(v, reflect.Indirect(reflect.ValueOf(target)).Interface())
	if err != nil {
		return err
	}
	return checkNoExtraENVValues(params.EnvPrefix, keys)
}

func checkNoExtraENVValues(prefix string, structKeys []string) error {
	envPrefix := strings.ToUpper(prefix) + "_"
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, envPrefix) {
			continue
		}
		kv := strings.SplitN(e, "=", 2)
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(kv[0], envPrefix)), "_", ".")
		found := false
		for _, val := range structKeys {
			if strings.ToLower(val) == key {
				found = true
				break
			}
		}
		if !found {
			return errors.New(fmt.Sprintf("Value not found in config: %s", key))
		}
	}
	return nil
}

func checkAllValuesIsSet(v *viper.Viper, c interface{}) ([]string, error) {
	names := deepFieldNames(c, "")
	for _, val := range names {
		if !v.IsSet(val) {
			return nil, errors.New(fmt.Sprintf("Value not found in config: %s", val))
		}
	}
	return names, nil
}

func deepFieldNames(iface interface{}, prefix string) []string {
	names := make([]string, 0)
	ifv := reflect.ValueOf(iface)

	for i := 0; i < ifv.NumField(); i++ {
		v := ifv.Field(i)
		name := ifv.Type().Field(i).Name
		if prefix != "" {
			name = prefix + "." + name
		}

		switch v.Kind() {
		case reflect.Struct:
			names = append(names, deepFieldNames(v.Interface(), name)...)
		default:
			names = append(names, name)
		}
	}

	return names
}

// PrintConfig logs the loaded configuration with the DB password masked.
func PrintConfig(log *logrus.Logger, c *Timelock) {
	cc := *c
	cc.DB.URL = replacePassword(cc.DB.URL)
	out, err := yaml.Marshal(cc)
	if err != nil {
		log.Error(errors.Wrapf(err, "failed to marshal config structure"))
		return
	}
	log.Infof("Loaded configuration: \n %s \n", string(out))
}

func replacePassword(url string) string {
	re := regexp.MustCompile(`^(?P<start>.*)(:(?P<pass>[^@\/:?]+)@)(?P<end>.*)$`)
	result := []byte{}
	if re.MatchString(url) {
		for _, submatches := range re.FindAllStringSubmatchIndex(url, -1) {
			result = re.ExpandString(result, `$start:<masked>@$end`, url, submatches)
		}
		return string(result)
	}
	return url
}
