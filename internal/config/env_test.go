// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseHelpers(t *testing.T) {
	t.Setenv("STB_TEST_STRING", "hello")
	t.Setenv("STB_TEST_EMPTY", "")
	t.Setenv("STB_TEST_INT", "42")
	t.Setenv("STB_TEST_BAD_INT", "4x2")
	t.Setenv("STB_TEST_FLOAT", "0.25")
	t.Setenv("STB_TEST_DURATION", "1500ms")
	t.Setenv("STB_TEST_BAD_DURATION", "soon")

	assert.Equal(t, "hello", ParseString("STB_TEST_STRING", "x"))
	assert.Equal(t, "x", ParseString("STB_TEST_EMPTY", "x"))
	assert.Equal(t, "x", ParseString("STB_TEST_UNSET", "x"))
	assert.Equal(t, 42, ParseInt("STB_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("STB_TEST_BAD_INT", 1))
	assert.InDelta(t, 0.25, ParseFloat("STB_TEST_FLOAT", 1), 1e-9)
	assert.Equal(t, 1500*time.Millisecond, ParseDuration("STB_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, ParseDuration("STB_TEST_BAD_DURATION", time.Second))
}

func TestParseBool(t *testing.T) {
	cases := map[string]bool{
		"true": true, "TRUE": true, "1": true, "yes": true,
		"false": false, "0": false, "No": false,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			t.Setenv("STB_TEST_BOOL", in)
			assert.Equal(t, want, ParseBool("STB_TEST_BOOL", !want))
		})
	}

	t.Run("invalid keeps default", func(t *testing.T) {
		t.Setenv("STB_TEST_BOOL", "maybe")
		assert.True(t, ParseBool("STB_TEST_BOOL", true))
	})
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "***", redact(EnvPassword, "hunter2"))
	assert.Equal(t, "***", redact(EnvRefreshToken, "abc"))
	assert.Equal(t, "", redact(EnvPassword, ""))
	assert.Equal(t, "nl", redact(EnvCountry, "nl"))
}
