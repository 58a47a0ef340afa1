// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package botcmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go.mau.fi/botcmd/convert"
	"go.mau.fi/botcmd/typegraph"
)

// Manifest is a declarative description of a command tree, meant to be
// loaded from a YAML file and turned into handlers with BuildManifest.
//
//	commands:
//	- name: roll
//	  aliases: [dice]
//	  description: Roll dice
//	  parameters:
//	  - name: sides
//	    type: int
//	    optional: true
//	    default: 6
type Manifest struct {
	Commands []*ManifestCommand `yaml:"commands"`
}

type ManifestCommand struct {
	Name        string               `yaml:"name"`
	Aliases     []string             `yaml:"aliases,omitempty"`
	Description string               `yaml:"description,omitempty"`
	Parameters  []*ManifestParameter `yaml:"parameters,omitempty"`
	Subcommands []*ManifestCommand   `yaml:"subcommands,omitempty"`
}

type ManifestParameter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Type is the name of a registered zero-argument type, e.g. "int" or
	// "string". A "?" suffix makes it nullable.
	Type     string           `yaml:"type"`
	Optional bool             `yaml:"optional,omitempty"`
	Default  any              `yaml:"default,omitempty"`
	Choices  []convert.Choice `yaml:"choices,omitempty"`
}

// LoadManifest parses a YAML command manifest.
func LoadManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	err := yaml.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	} else if len(manifest.Commands) == 0 {
		return nil, fmt.Errorf("manifest has no commands")
	}
	return &manifest, nil
}

// BuildManifest turns a manifest into registerable handlers. Functions are
// looked up by the space-joined command path, e.g. "settings prefix" for the
// prefix subcommand of settings. Commands with subcommands may omit their
// function, all others must have one. Unlike Register, this returns errors
// instead of panicking, since manifests are typically external input.
func BuildManifest[MetaType any](manifest *Manifest, registry *convert.Registry, funcs map[string]func(ce *Event[MetaType])) ([]*Handler[MetaType], error) {
	handlers := make([]*Handler[MetaType], len(manifest.Commands))
	for i, cmd := range manifest.Commands {
		handler, err := buildManifestCommand(cmd, registry, funcs, nil)
		if err != nil {
			return nil, err
		}
		handlers[i] = handler
	}
	return handlers, nil
}

func buildManifestCommand[MetaType any](cmd *ManifestCommand, registry *convert.Registry, funcs map[string]func(ce *Event[MetaType]), prefix []string) (*Handler[MetaType], error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("command with empty name under %q", strings.Join(prefix, " "))
	}
	path := append(slices.Clone(prefix), cmd.Name)
	pathStr := strings.Join(path, " ")
	if strings.ToLower(cmd.Name) != cmd.Name {
		return nil, fmt.Errorf("command name %q is not lowercase", pathStr)
	}
	handler := &Handler[MetaType]{
		Name:        cmd.Name,
		Aliases:     cmd.Aliases,
		Description: cmd.Description,
		Func:        funcs[pathStr],
	}
	if len(cmd.Parameters) > 0 {
		handler.Parameters = make([]*Parameter, len(cmd.Parameters))
		for i, manifestParam := range cmd.Parameters {
			param, err := buildManifestParameter(manifestParam, registry)
			if err != nil {
				return nil, fmt.Errorf("command %q: %w", pathStr, err)
			}
			handler.Parameters[i] = param
		}
	}
	for _, sub := range cmd.Subcommands {
		subHandler, err := buildManifestCommand(sub, registry, funcs, path)
		if err != nil {
			return nil, err
		}
		handler.Subcommands = append(handler.Subcommands, subHandler)
	}
	if handler.Func == nil && len(handler.Subcommands) == 0 {
		return nil, fmt.Errorf("no function provided for command %q", pathStr)
	}
	return handler, nil
}

func buildManifestParameter(manifestParam *ManifestParameter, registry *convert.Registry) (*Parameter, error) {
	if manifestParam.Name == "" {
		return nil, fmt.Errorf("parameter with empty name")
	} else if strings.ToLower(manifestParam.Name) != manifestParam.Name {
		return nil, fmt.Errorf("parameter name %q is not lowercase", manifestParam.Name)
	} else if strings.ContainsAny(manifestParam.Name, paramNameBlocklist) {
		return nil, fmt.Errorf("parameter name %q contains forbidden characters", manifestParam.Name)
	}
	typeID, err := resolveTypeName(registry, manifestParam.Type)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", manifestParam.Name, err)
	}
	def, err := normalizeManifestDefault(registry, typeID, manifestParam.Default)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", manifestParam.Name, err)
	}
	return &Parameter{
		Name:        manifestParam.Name,
		Description: manifestParam.Description,
		Type:        typeID,
		Optional:    manifestParam.Optional,
		Default:     def,
		Choices:     manifestParam.Choices,
	}, nil
}

func resolveTypeName(registry *convert.Registry, name string) (typegraph.TypeID, error) {
	baseName := strings.TrimSuffix(name, "?")
	if baseName == "" {
		return 0, fmt.Errorf("missing type name")
	} else if baseName == "dynamic" {
		return typegraph.DynamicID, nil
	}
	id, ok := registry.Types().LookupName(baseName)
	if !ok {
		return 0, fmt.Errorf("unknown type %q", baseName)
	}
	if strings.HasSuffix(name, "?") {
		id = id.AsNullable()
	}
	return id, nil
}

// normalizeManifestDefault aligns YAML-decoded default values with the types
// the converters produce, so Event.Args holds the same Go type whether the
// value came from input or from a default.
func normalizeManifestDefault(registry *convert.Registry, typeID typegraph.TypeID, def any) (any, error) {
	if def == nil {
		return nil, nil
	}
	builtin := registry.Builtin()
	switch typeID.AsNonNullable() {
	case builtin.Int, builtin.Num:
		switch v := def.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if typeID.AsNonNullable() == builtin.Num {
				return v, nil
			}
		}
	case builtin.Float:
		switch v := def.(type) {
		case int:
			return float64(v), nil
		case float64:
			return v, nil
		}
	case builtin.Duration:
		if v, isString := def.(string); isString {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid duration default %q: %w", v, err)
			}
			return dur, nil
		}
	default:
		return def, nil
	}
	return nil, fmt.Errorf("default value %v (%T) doesn't fit type %s", def, def, registry.Types().Describe(typeID))
}
