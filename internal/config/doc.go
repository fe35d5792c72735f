// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the bridge configuration.
//
// Values are resolved with the precedence ENV > file > defaults. The YAML file
// is parsed strictly: unknown keys are rejected. A Holder keeps the active
// configuration and reloads it when the file changes on disk.
package config
