package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdentity_Scenarios(t *testing.T) {
	cases := map[string]string{
		"alice":        "alice",
		"@alice":       "alice",
		"@@alice":      "alice",
		"  alice  ":    "alice",
		" @alice ":     "alice",
		"@ alice":      "alice",
		"":             "",
		"@":            "",
		"  @  ":        "",
		"Alice":        "Alice",
		"alice@domain": "alice@domain",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, NormalizeIdentity(input), "input %q", input)
	}
}

func TestNormalizeIdentity_Idempotent(t *testing.T) {
	inputs := []string{"@alice", "  @@bob  ", "carol", "@ dave ", ""}
	for _, in := range inputs {
		once := NormalizeIdentity(in)
		assert.Equal(t, once, NormalizeIdentity(once), "input %q", in)
	}
}

func TestProfileURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/alice", ProfileURL("alice"))
}
