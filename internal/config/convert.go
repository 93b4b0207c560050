package config

import (
	"strings"

	"github.com/pior/binproto"
	"github.com/pior/binproto/layout"
)

// TextProtocol converts the [text] section. The file must have been
// validated.
func (f File) TextProtocol(reporter binproto.Reporter) binproto.TextConfig {
	return binproto.TextConfig{
		Encoding:      f.Text.Encoding,
		EncodeErrors:  binproto.Mode(f.Text.EncodeErrors),
		DecodeErrors:  binproto.Mode(f.Text.DecodeErrors),
		QueueCapacity: f.Text.QueueCapacity,
		Reporter:      reporter,
	}
}

// FixedProtocol converts the [fixed] section.
func (f File) FixedProtocol(reporter binproto.Reporter) binproto.FixedConfig {
	fields := make([]layout.Field, len(f.Fixed.Fields))
	for i, fc := range f.Fixed.Fields {
		fields[i] = layout.Field{
			Kind:   layout.Kind(strings.ToLower(strings.TrimSpace(fc.Kind))),
			Length: fc.Length,
		}
	}
	return binproto.FixedConfig{
		Fields:        fields,
		QueueCapacity: f.Fixed.QueueCapacity,
		Reporter:      reporter,
	}
}

// PumpOptions converts the [pump] section.
func (f File) PumpOptions() binproto.PumpConfig {
	return binproto.PumpConfig{
		ChunkSize:               f.Pump.ChunkSize,
		MaxConsecutiveMalformed: f.Pump.MaxConsecutiveMalformed,
	}
}
