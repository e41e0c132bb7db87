package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/torlnapp/teos"
	"github.com/torlnapp/teos/internal/keymaterial"
)

// inspection is the JSON summary printed by the inspect command.
type inspection struct {
	ID            string         `json:"id"`
	Mode          teos.Mode      `json:"mode"`
	CipherSuite   teos.Suite     `json:"ciphersuite"`
	Algorithm     teos.Algorithm `json:"algorithm"`
	Version       string         `json:"version"`
	AAD           teos.AAD       `json:"aad"`
	Created       time.Time      `json:"created"`
	CiphertextLen int            `json:"ciphertextLength"`
	PSKID         string         `json:"pskId,omitempty"`
	PSKGeneration *uint64        `json:"pskGeneration,omitempty"`
	KeyID         string         `json:"keyId,omitempty"`
	Signature     string         `json:"signature,omitempty"`
}

func newInspectCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe an envelope read from stdin without decrypting it",
		Long: `Reads an envelope (raw, base64 or DTO JSON) from stdin and prints its
metadata as JSON. With --verify-key the signature is checked as well.

The mode, suite and PSK fields are not covered by the signature.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runInspect(cmd, v) },
	}

	cmd.Flags().String("verify-key", "", "sender verification key: JWK, hex, base64 or @file")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runInspect(cmd *cobra.Command, v *viper.Viper) error {
	setupLogging(v)

	t, err := readEnvelope(cmd.InOrStdin())
	if err != nil {
		return err
	}

	auth := t.Envelope.Authentication()
	info := inspection{
		ID:            t.ID(),
		Mode:          t.Mode,
		CipherSuite:   t.Envelope.CipherSuite(),
		Algorithm:     t.Algorithm,
		Version:       t.Version,
		AAD:           t.AAD,
		Created:       time.UnixMilli(t.AAD.Timestamp).UTC(),
		CiphertextLen: len(t.Ciphertext),
		KeyID:         auth.KeyID,
	}
	if env, ok := t.Envelope.(*teos.PSKEnvelope); ok {
		gen := env.PSKGeneration
		info.PSKID = env.PSKID
		info.PSKGeneration = &gen
	}

	if s := v.GetString("verify-key"); s != "" {
		pub, err := keymaterial.VerifyKey(s)
		if err != nil {
			return err
		}
		if err := teos.VerifyTEOS(t, pub); err != nil {
			info.Signature = err.Error()
		} else {
			info.Signature = "valid"
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
