package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/torlnapp/teos"
	"github.com/torlnapp/teos/internal/keymaterial"
)

func newSealCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Seal stdin into a signed PSK envelope",
		Long: `Reads a payload from stdin, encrypts it under the key derived for the
given pre-shared key generation, signs it and writes the envelope to stdout.

With --json the input is parsed as JSON and sealed as a structured value.
Otherwise the raw bytes are sealed.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runSeal(cmd, v) },
	}

	f := cmd.Flags()
	addPSKFlags(cmd)
	f.Uint64("generation", 0, "pre-shared key generation")
	f.String("signing-key", "", "Ed25519 signing key: seed, private key, BIP-39 mnemonic or @file")
	f.String("context-id", "", "context identifier")
	f.Uint64("epoch", 0, "epoch identifier")
	f.String("sender", "", "sender client identifier")
	f.Uint64("sequence", 0, "message sequence number")
	f.StringSlice("scope", nil, "scope granted to the payload (repeatable)")
	f.Bool("json", false, "parse stdin as JSON")
	f.String("format", "raw", "output format: raw|base64|dto")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runSeal(cmd *cobra.Command, v *viper.Viper) error {
	log := setupLogging(v)

	signer, err := keymaterial.SigningKey(v.GetString("signing-key"))
	if err != nil {
		return fmt.Errorf("signing key: %w", err)
	}
	psk, err := derivePSK(cmd, v, v.GetString("psk-id"), v.GetUint64("generation"))
	if err != nil {
		return err
	}

	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var value any = input
	if v.GetBool("json") {
		if err := json.Unmarshal(input, &value); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
	}
	payload, err := teos.EncodePayload(value)
	if err != nil {
		return err
	}

	params := teos.AADParams{
		ContextID:       v.GetString("context-id"),
		EpochID:         v.GetUint64("epoch"),
		SenderClientID:  v.GetString("sender"),
		MessageSequence: v.GetUint64("sequence"),
		Scopes:          v.GetStringSlice("scope"),
	}
	eng := teos.New(teos.WithLogger(log))
	sealed, err := eng.SealPSK(cmd.Context(), params, psk, signer, payload)
	if err != nil {
		return err
	}
	return writeEnvelope(cmd.OutOrStdout(), v.GetString("format"), sealed)
}

func derivePSK(cmd *cobra.Command, v *viper.Viper, id string, generation uint64) (teos.PSK, error) {
	secret, err := keymaterial.Secret(v.GetString("psk-secret"))
	if err != nil {
		return teos.PSK{}, fmt.Errorf("psk secret: %w", err)
	}
	ks := teos.HKDFKeySchedule{Label: v.GetString("psk-label")}
	if s := v.GetString("psk-salt"); s != "" {
		if ks.Salt, err = keymaterial.ParseBytes(s); err != nil {
			return teos.PSK{}, fmt.Errorf("psk salt: %w", err)
		}
	}
	return teos.DerivePSK(cmd.Context(), ks, id, secret, generation)
}

func writeEnvelope(w io.Writer, format string, t *teos.TEOS) error {
	switch format {
	case "raw", "base64":
		blob, err := teos.Serialize(t)
		if err != nil {
			return err
		}
		if format == "base64" {
			_, err = fmt.Fprintln(w, base64.StdEncoding.EncodeToString(blob))
			return err
		}
		_, err = w.Write(blob)
		return err
	case "dto":
		d, err := teos.NewDTO(t)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// readEnvelope accepts raw MessagePack, base64 or DTO JSON input.
func readEnvelope(r io.Reader) (*teos.TEOS, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("no envelope on stdin")
	}

	if data[0] == '{' {
		var d teos.DTO
		if err := json.Unmarshal(data, &d); err == nil {
			return d.TEOS()
		}
	}
	t, err := teos.Deserialize(data)
	if err == nil {
		return t, nil
	}
	if decoded, derr := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data))); derr == nil {
		return teos.Deserialize(decoded)
	}
	return nil, err
}
