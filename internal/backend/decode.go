// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"encoding/json"

	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/ManuGH/stbbridge/internal/recordings"
)

// decoder turns a vendor's native recording payloads into entries. Tags the
// decoder does not recognise become unknown kinds; the tree builder skips
// them.
type decoder interface {
	recordings(raw json.RawMessage) ([]recordings.Entry, error)
	show(showID string, raw json.RawMessage) (recordings.Show, error)
}

func decoderFor(p config.Provider) decoder {
	if p == config.ProviderArris {
		return arrisDecoder{}
	}
	return horizonDecoder{}
}

func unknownKind(tag string) recordings.Kind {
	return recordings.Kind("unknown:" + tag)
}
