package compositor

import (
	"strings"
	"testing"
)

func TestShaderSourcesEmbedded(t *testing.T) {
	for name, src := range map[string]string{
		"sprite": spriteShaderWGSL,
		"blit":   blitShaderWGSL,
	} {
		if !strings.Contains(src, "@compute") {
			t.Errorf("%s shader missing compute entry point", name)
		}
		if !strings.Contains(src, "fn main") {
			t.Errorf("%s shader missing main function", name)
		}
	}
}
