// Package config resolves benchmark options from flags, VODBENCH_* env vars,
// an optional config file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vodbench/internal/dirs"
	"vodbench/internal/model"
	"vodbench/internal/strategy"
)

// EnvPrefix is prepended to every environment key, e.g. VODBENCH_TARGET.
const EnvPrefix = "VODBENCH"

// Defaults are the built-in values of every option key.
var Defaults = map[string]any{
	"out_dir":             "",
	"verbose":             false,
	"ffmpeg":              "",
	"ffprobe":             "",
	"jobs":                2,
	"target":              95.0,
	"resolutions":         []int{1080, 720},
	"variants":            []string{"h264"},
	"min_segment":         2.0,
	"max_segment":         10.0,
	"scene_threshold":     0.4,
	"band_width":          0.5,
	"narrow_gap":          3.0,
	"narrow_spread":       0.3,
	"reserve_bonus_probe": false,
	"linear":              false,
	"linear_bitrates":     []int{1000, 2000, 3000, 4500, 6000, 8000},
	"preprocess":          "",
	"config_timeout":      "0s",
	"keep_temp":           false,
	"no_cache":            false,
	"no_ui":               false,
}

// Key maps a flag name to its option key: "min-segment" → "min_segment".
func Key(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// Init wires v with defaults, config search paths, env and the flags of fs.
// cfgFile, when set, replaces the search paths. A missing default config
// file is not an error; a missing or broken explicit one is.
func Init(v *viper.Viper, fs *pflag.FlagSet, cfgFile string) error {
	for k, d := range Defaults {
		v.SetDefault(k, d)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if cfgDir, err := dirs.ConfigDir(); err == nil {
			v.AddConfigPath(cfgDir)
		}
		v.AddConfigPath(".")
		v.SetConfigName("config") // supports config.{yaml|yml|json|toml}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "help" || f.Name == "config" {
				return
			}
			if err := v.BindPFlag(Key(f.Name), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return bindErr
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("%w: read config: %v", model.ErrConfiguration, err)
	}
	return nil
}

// Load resolves BenchOptions from v. input overrides the "input" key when set.
func Load(v *viper.Viper, input string) (model.BenchOptions, error) {
	if input == "" {
		input = v.GetString("input")
	}
	res, err := ints(v, "resolutions")
	if err != nil {
		return model.BenchOptions{}, err
	}
	linear, err := ints(v, "linear_bitrates")
	if err != nil {
		return model.BenchOptions{}, err
	}
	var variants []model.Variant
	for _, s := range strs(v, "variants") {
		vr, err := model.ParseVariant(s)
		if err != nil {
			return model.BenchOptions{}, err
		}
		variants = append(variants, vr)
	}

	opts := model.BenchOptions{
		Input:             input,
		OutDir:            v.GetString("out_dir"),
		Verbose:           v.GetBool("verbose"),
		Jobs:              v.GetInt("jobs"),
		FFmpegPath:        v.GetString("ffmpeg"),
		FFprobePath:       v.GetString("ffprobe"),
		TargetQuality:     v.GetFloat64("target"),
		Resolutions:       res,
		Variants:          variants,
		MinSegmentSec:     v.GetFloat64("min_segment"),
		MaxSegmentSec:     v.GetFloat64("max_segment"),
		SceneThreshold:    v.GetFloat64("scene_threshold"),
		NoCache:           v.GetBool("no_cache"),
		BandWidth:         float64Ptr(v, "band_width"),
		NarrowGap:         float64Ptr(v, "narrow_gap"),
		NarrowSpread:      float64Ptr(v, "narrow_spread"),
		ReserveBonusProbe: v.GetBool("reserve_bonus_probe"),
		Mode:              model.SearchBinary,
		LinearBitrates:    linear,
		Preprocess:        v.GetString("preprocess"),
		ConfigTimeout:     v.GetDuration("config_timeout"),
		KeepTemp:          v.GetBool("keep_temp"),
		NoUI:              v.GetBool("no_ui"),
	}
	if v.GetBool("linear") {
		opts.Mode = model.SearchLinear
	}
	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	if opts.MinSegmentSec <= 0 || opts.MaxSegmentSec < opts.MinSegmentSec {
		return opts, fmt.Errorf("%w: segment bounds %.2f/%.2f", model.ErrConfiguration, opts.MinSegmentSec, opts.MaxSegmentSec)
	}
	return opts, nil
}

// Table returns the resolution tiers under the "tiers" key, or the built-in table.
//
//	tiers:
//	  - {height: 1080, min_kbps: 1500, max_kbps: 10000, max_probes: 6}
func Table(v *viper.Viper) (strategy.Table, error) {
	if !v.IsSet("tiers") {
		return strategy.DefaultTable(), nil
	}
	var t strategy.Table
	if err := v.UnmarshalKey("tiers", &t); err != nil {
		return nil, fmt.Errorf("%w: tiers: %v", model.ErrConfiguration, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// float64Ptr returns the key's value, or nil when no source sets it.
func float64Ptr(v *viper.Viper, key string) *float64 {
	if !v.IsSet(key) {
		return nil
	}
	f := v.GetFloat64(key)
	return &f
}

// strs reads a list key given as a slice, or as a comma/space separated string from env.
func strs(v *viper.Viper, key string) []string {
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case []string:
		return val
	case string:
		return splitList(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, x := range val {
			out = append(out, fmt.Sprint(x))
		}
		return out
	default:
		return splitList(fmt.Sprint(val))
	}
}

func ints(v *viper.Viper, key string) ([]int, error) {
	if val, ok := v.Get(key).([]int); ok {
		return val, nil
	}
	raw := strs(v, key)
	out := make([]int, 0, len(raw))
	for _, s := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not an integer", model.ErrConfiguration, key, s)
		}
		out = append(out, n)
	}
	return out, nil
}

func splitList(s string) []string {
	s = strings.Trim(s, "[]")
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
