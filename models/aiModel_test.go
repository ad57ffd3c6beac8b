package models

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"google.golang.org/api/iterator"
)

func TestStreamDone(t *testing.T) {
	if !streamDone(iterator.Done) {
		t.Error("iterator.Done is normal exhaustion")
	}
	if !streamDone(fmt.Errorf("next: %w", iterator.Done)) {
		t.Error("wrapped iterator.Done is still exhaustion")
	}
	if !streamDone(io.EOF) {
		t.Error("EOF is normal exhaustion")
	}
	if streamDone(errors.New("rpc error: code = Unavailable")) {
		t.Error("transport errors must not be swallowed as exhaustion")
	}
}

func TestCapabilityHeuristicsGeminiPro(t *testing.T) {
	caps := ApplyCapabilityHeuristics("gemini-1.5-pro", "Gemini 1.5 Pro")
	if !caps.MultiModal {
		t.Error("gemini models should be multimodal")
	}
	if !caps.IsAdvancedReasoner {
		t.Error("pro models should be advanced reasoners")
	}
	if !caps.CanSearch {
		t.Error("gemini 1.5 should be able to search")
	}
	if !caps.CanGenerateImages {
		t.Error("pro models should be able to generate images")
	}
	if caps.SupportsDriveMode {
		t.Error("pro models are too slow for drive mode")
	}
}

func TestCapabilityHeuristicsGeminiFlash(t *testing.T) {
	caps := ApplyCapabilityHeuristics("gemini-1.5-flash", "Gemini 1.5 Flash")
	if caps.IsAdvancedReasoner {
		t.Error("1.5 flash should not be an advanced reasoner")
	}
	if !caps.SupportsDriveMode {
		t.Error("flash models should support drive mode")
	}
	if !caps.CanSearch {
		t.Error("gemini 1.5 should be able to search")
	}
}

func TestCapabilityHeuristics25Flash(t *testing.T) {
	caps := ApplyCapabilityHeuristics("gemini-2.5-flash", "Gemini 2.5 Flash")
	if !caps.IsAdvancedReasoner {
		t.Error("2.5 flash keeps the advanced reasoner flag")
	}
	if !caps.CanGenerateImages {
		t.Error("2.5 models should be able to generate images")
	}
	if !caps.SupportsDriveMode {
		t.Error("flash models should support drive mode")
	}
}

func TestCapabilityHeuristicsImagen(t *testing.T) {
	caps := ApplyCapabilityHeuristics("imagen-3.0-generate-002", "Imagen 3")
	if !caps.CanGenerateImages {
		t.Error("imagen should generate images")
	}
	if caps.SupportsReasoning {
		t.Error("imagen is not a text reasoner")
	}
	if caps.IsAdvancedReasoner {
		t.Error("non-reasoners cannot be advanced reasoners")
	}
}

func TestCapabilityHeuristicsUnknownFamily(t *testing.T) {
	caps := ApplyCapabilityHeuristics("aqa", "Model that performs Attributed Question Answering")
	if caps.SupportsReasoning || caps.MultiModal || caps.CanSearch {
		t.Errorf("unknown families get no capabilities, got %+v", caps)
	}
}
