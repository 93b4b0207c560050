package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pior/binproto"
	"github.com/pior/binproto/internal/config"
	"github.com/pior/binproto/layout"
)

type streamFlags struct {
	encoding     string
	mode         string
	chunkSize    int
	maxMalformed uint32
}

func (f *streamFlags) register(cmd *cobra.Command, modeHelp string, withPump bool) {
	cmd.Flags().StringVarP(&f.encoding, "encoding", "e", "", "character encoding (default from config, utf-8)")
	cmd.Flags().StringVar(&f.mode, "errors", "", modeHelp)
	if !withPump {
		return
	}
	cmd.Flags().IntVar(&f.chunkSize, "chunk-size", 0, "read size in bytes (default from config)")
	cmd.Flags().Uint32Var(&f.maxMalformed, "max-malformed", 0, "stop after this many consecutive malformed chunks (0: never)")
}

func (f *streamFlags) pumpConfig(cmd *cobra.Command) binproto.PumpConfig {
	pc := cfg.PumpOptions()
	pc.Name = cmd.Name()
	if cmd.Flags().Changed("chunk-size") {
		pc.ChunkSize = f.chunkSize
	}
	if cmd.Flags().Changed("max-malformed") {
		pc.MaxConsecutiveMalformed = f.maxMalformed
	}
	return pc
}

func logStats(cmd *cobra.Command, s binproto.Stats) {
	log.Debug().
		Str("command", cmd.Name()).
		Uint64("chunks", s.InboundChunks).
		Uint64("bytes", s.InboundBytes).
		Uint64("tuples", s.Deserialised).
		Uint64("serialised", s.Serialised).
		Uint64("errors", s.Errors()).
		Msg("done")
}

func newDecodeCmd() *cobra.Command {
	var (
		flags       streamFlags
		quote       bool
		failOnError bool
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode bytes from stdin to text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := cfg.TextProtocol(binproto.DefaultReporter())
			if flags.encoding != "" {
				tc.Encoding = flags.encoding
			}
			if flags.mode != "" {
				tc.DecodeErrors = binproto.Mode(flags.mode)
			}
			p, err := binproto.NewText(tc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = binproto.NewPump(p, flags.pumpConfig(cmd)).Run(cmd.Context(), cmd.InOrStdin(), func(values binproto.Tuple) error {
				if quote {
					_, err := fmt.Fprintf(out, "%q\n", values[0])
					return err
				}
				_, err := io.WriteString(out, values[0].(string))
				return err
			})
			logStats(cmd, p.Stats())
			if err != nil {
				return err
			}
			if n := p.Stats().Errors(); failOnError && n > 0 {
				return fmt.Errorf("%d malformed sequences", n)
			}
			return nil
		},
	}

	flags.register(cmd, "decode error mode: strict|replace", true)
	cmd.Flags().BoolVarP(&quote, "quote", "q", false, "print each decoded value quoted on its own line")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero if any sequence was malformed")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	var (
		flags streamFlags
		asHex bool
	)

	cmd := &cobra.Command{
		Use:   "encode [text...]",
		Short: "Encode text to bytes",
		Long:  "Encode the arguments, joined by spaces, or stdin when no argument is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := cfg.TextProtocol(binproto.DefaultReporter())
			if flags.encoding != "" {
				tc.Encoding = flags.encoding
			}
			if flags.mode != "" {
				tc.EncodeErrors = binproto.Mode(flags.mode)
			}
			p, err := binproto.NewText(tc)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}

			var w io.Writer = cmd.OutOrStdout()
			if asHex {
				enc := hex.NewEncoder(w)
				defer fmt.Fprintln(w)
				w = enc
			}

			if _, err := binproto.NewPump(p, flags.pumpConfig(cmd)).Send(w, binproto.Tuple{text}); err != nil {
				return err
			}
			logStats(cmd, p.Stats())
			if n := p.Stats().EncodeErrors; n > 0 {
				return fmt.Errorf("text is not representable in %s", p.Encoding())
			}
			return nil
		},
	}

	flags.register(cmd, "encode error mode: strict|replace", false)
	cmd.Flags().BoolVarP(&asHex, "hex", "x", false, "write hex instead of raw bytes")
	return cmd
}

type recordFlags struct {
	fields string
	asHex  bool
}

func (f *recordFlags) protocol() (*binproto.Fixed, error) {
	fc := cfg.FixedProtocol(binproto.DefaultReporter())
	if f.fields != "" {
		fields, err := layout.ParseFields(f.fields)
		if err != nil {
			return nil, err
		}
		fc.Fields = fields
	}
	if len(fc.Fields) == 0 {
		return nil, fmt.Errorf("no fields: use --fields or a config with [[fixed.fields]]")
	}
	return binproto.NewFixed(fc)
}

func newPackCmd() *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "pack value...",
		Short: "Pack one value per field into a fixed-width record",
		Example: `  binproto pack --fields uint:4,bool:1 300 true
  0000012c01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.protocol()
			if err != nil {
				return err
			}
			values, err := parseValues(p.Layout(), args)
			if err != nil {
				return err
			}
			record, err := p.Pack(values)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.asHex {
				_, err = fmt.Fprintln(out, hex.EncodeToString(record))
			} else {
				_, err = out.Write(record)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.fields, "fields", "f", "", "field list, e.g. uint:4,bool:1 (default from config)")
	cmd.Flags().BoolVarP(&flags.asHex, "hex", "x", true, "write hex instead of raw bytes")
	return cmd
}

func newUnpackCmd() *cobra.Command {
	var (
		flags        recordFlags
		maxMalformed uint32
	)

	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Unpack fixed-width records from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.protocol()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if flags.asHex {
				raw, err := io.ReadAll(in)
				if err != nil {
					return err
				}
				data, err := hex.DecodeString(strings.Join(strings.Fields(string(raw)), ""))
				if err != nil {
					return fmt.Errorf("invalid hex input: %w", err)
				}
				in = bytes.NewReader(data)
			}

			pc := cfg.PumpOptions()
			pc.Name = cmd.Name()
			pc.ChunkSize = 0 // one record per chunk
			if cmd.Flags().Changed("max-malformed") {
				pc.MaxConsecutiveMalformed = maxMalformed
			}

			out := cmd.OutOrStdout()
			err = binproto.NewPump(p, pc).Run(cmd.Context(), in, func(values binproto.Tuple) error {
				_, err := fmt.Fprintln(out, formatValues(values))
				return err
			})
			logStats(cmd, p.Stats())
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.fields, "fields", "f", "", "field list, e.g. uint:4,bool:1 (default from config)")
	cmd.Flags().BoolVarP(&flags.asHex, "hex", "x", false, "read hex instead of raw bytes")
	cmd.Flags().Uint32Var(&maxMalformed, "max-malformed", 0, "stop after this many consecutive bad records (0: never)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage config files",
	}

	var (
		kind   string
		output string
		force  bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, kind, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s config template to %s\n", kind, output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&kind, "kind", "k", "text", "template kind: text|fixed")
	initCmd.Flags().StringVarP(&output, "output", "o", "binproto.toml", "output path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate path",
		Short: "Check a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Validated config at %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

// parseValues converts command-line arguments to the Go types each field
// packs from.
func parseValues(l *layout.Layout, args []string) (binproto.Tuple, error) {
	if len(args) != l.Len() {
		return nil, &binproto.ArityError{Want: l.Len(), Got: len(args)}
	}

	values := make(binproto.Tuple, len(args))
	for i, arg := range args {
		var (
			v   any
			err error
		)
		switch l.Kind(i) {
		case layout.Int:
			v, err = strconv.ParseInt(arg, 0, 64)
		case layout.Uint:
			v, err = strconv.ParseUint(arg, 0, 64)
		case layout.Bool:
			v, err = strconv.ParseBool(arg)
		case layout.Float:
			v, err = strconv.ParseFloat(arg, 64)
		default:
			v = arg
		}
		if err != nil {
			return nil, fmt.Errorf("value %d (%q): %w", i, arg, err)
		}
		values[i] = v
	}
	return values, nil
}

func formatValues(values binproto.Tuple) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			parts[i] = strconv.Quote(string(b))
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
