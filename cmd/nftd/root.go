package main

import (
	"strings"

	"github.com/spf13/viper"
)

// envReplacer replaces `-` with `_`.
// This is used to map flag like `--my-param` to environment variables like `NFTD_MY_PARAM`.
var envReplacer = strings.NewReplacer("-", "_")

func init() {
	viper.SetEnvPrefix("NFTD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(envReplacer)
}
