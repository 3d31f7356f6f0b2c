// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection and editing: `ava config`.
//
// Keys use dot notation matching the TOML layout, e.g.
// `ava config set backend.base_url https://ava.vocus.com.au`.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rorymaher2092/ava-tui/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	switch strings.ToLower(args.Subcommand) {
	case "show", "":
		return configShow(args)
	case "path":
		return configPath(args)
	case "get":
		return configGet(args)
	case "set":
		return configSet(args)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "ava config [show|path|get <key>|set <key> <value>]",
		}
	}
}

func configShow(args Args) error {
	cfg := config.Global()
	if args.JSON {
		return NewJSONResponse("config", cfg).Print()
	}

	path, _ := config.ConfigPathTOML()
	if _, err := os.Stat(path); err == nil {
		fmt.Println(DimStyle.Render("# " + path))
	} else {
		fmt.Println(DimStyle.Render("# defaults (no config file yet; `ava config set` creates one)"))
	}
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

func configPath(args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return WrapError(err, "resolving config path")
	}
	if args.JSON {
		exists := false
		if _, err := os.Stat(path); err == nil {
			exists = true
		}
		return NewJSONResponse("config", map[string]interface{}{"path": path, "exists": exists}).Print()
	}
	fmt.Println(path)
	return nil
}

func configGet(args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("key", "ava config get backend.base_url")
	}
	key := args.Raw[0]

	cfg := config.Global()
	value, err := cfg.Get(key)
	if err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{"key": key, "value": value}).Print()
	}
	fmt.Printf("%v\n", value)
	return nil
}

func configSet(args Args) error {
	if len(args.Raw) < 2 {
		return ErrMissingArgument("key and value", "ava config set chat.reveal_step_chars 8")
	}
	key := args.Raw[0]
	value := strings.Join(args.Raw[1:], " ")

	cfg := config.Global()
	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return WrapError(err, "rejected by validation")
	}
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "saving config")
	}

	if args.JSON {
		return NewJSONResponse("config", map[string]interface{}{"key": key, "value": value}).Print()
	}
	fmt.Printf("%s %s = %s\n", RenderStatus(true, false), key, value)
	return nil
}
