package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/torlnapp/teos"
	"github.com/torlnapp/teos/internal/keymaterial"
)

func newOpenCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Verify and decrypt an envelope read from stdin",
		Long: `Reads an envelope (raw, base64 or DTO JSON) from stdin, verifies its
signature against --verify-key, decrypts it and writes the payload to stdout.

PSK envelopes are opened with the key derived from --psk-secret for the
generation named in the envelope, or --generation when given. MLS envelopes
need the exported key in --key.

Byte payloads are written as-is; structured payloads are written as JSON.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runOpen(cmd, v) },
	}

	f := cmd.Flags()
	addPSKFlags(cmd)
	f.Int64("generation", -1, "pre-shared key generation (default: taken from the envelope)")
	f.String("key", "", "32 byte AEAD key for MLS envelopes (hex, base64 or @file)")
	f.String("verify-key", "", "sender verification key: JWK, hex, base64 or @file")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runOpen(cmd *cobra.Command, v *viper.Viper) error {
	log := setupLogging(v)

	pub, err := keymaterial.VerifyKey(v.GetString("verify-key"))
	if err != nil {
		return fmt.Errorf("verify key: %w", err)
	}
	t, err := readEnvelope(cmd.InOrStdin())
	if err != nil {
		return err
	}

	key, err := openKey(cmd, v, t)
	if err != nil {
		return err
	}

	var payload any
	eng := teos.New(teos.WithLogger(log))
	if err := eng.ExtractInto(cmd.Context(), t, key, pub, &payload); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if b, ok := payload.([]byte); ok {
		_, err = out.Write(b)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// openKey returns the AEAD key for t.
func openKey(cmd *cobra.Command, v *viper.Viper, t *teos.TEOS) ([]byte, error) {
	switch env := t.Envelope.(type) {
	case *teos.PSKEnvelope:
		if id := v.GetString("psk-id"); id != "" && id != env.PSKID {
			return nil, fmt.Errorf("envelope is for psk %q, not %q", env.PSKID, id)
		}
		generation := env.PSKGeneration
		if g := v.GetInt64("generation"); g >= 0 {
			generation = uint64(g)
		}
		psk, err := derivePSK(cmd, v, env.PSKID, generation)
		if err != nil {
			return nil, err
		}
		return psk.Key, nil
	case *teos.MLSEnvelope:
		if v.GetString("key") == "" {
			return nil, errors.New("mls envelope needs --key")
		}
		key, err := keymaterial.SymmetricKey(v.GetString("key"))
		if err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: %T", teos.ErrUnknownMode, t.Envelope)
	}
}
