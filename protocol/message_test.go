package protocol

import (
	"bytes"
	"testing"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/stretchr/testify/require"
)

func TestSignedRecover(t *testing.T) {
	_, privKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	req := &SubmitPaperRequest{Title: "T", Abstract: "A", Category: "C"}
	signed, err := NewSigned(privKey, req)
	require.NoError(t, err)

	recovered, signer, err := signed.Recover()
	require.NoError(t, err)
	require.Equal(t, req, recovered)

	expected, err := privKey.Principal()
	require.NoError(t, err)
	require.True(t, signer.Equal(expected))
}

func TestSignedRecoverRejectsTamperedObject(t *testing.T) {
	_, privKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	signed, err := NewSigned(privKey, &SubmitPaperRequest{Title: "T", Abstract: "A", Category: "C"})
	require.NoError(t, err)

	signed.Object.Title = "tampered"
	_, _, err = signed.Recover()
	require.Error(t, err)
}

func TestSignedRecoverRejectsSubstitutedPrincipal(t *testing.T) {
	_, privKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	other, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	signed, err := NewSigned(privKey, &ToggleActiveRequest{PaperID: 1})
	require.NoError(t, err)

	signed.Principal = other
	_, _, err = signed.Recover()
	require.Error(t, err)
}

func TestSignedSurvivesWire(t *testing.T) {
	_, privKey, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	signed, err := NewSigned(privKey, &SubmitReviewRequest{
		PaperID:        3,
		Recommendation: EncryptedInput{Ciphertext: []byte{1, 2}, Proof: []byte{3, 4}},
		Quality:        EncryptedInput{Ciphertext: []byte{5}, Proof: []byte{6}},
		Comment:        "solid methodology",
	})
	require.NoError(t, err)

	data, err := SerializeMessage(signed)
	require.NoError(t, err)

	decoded, err := DecodeMessage[Signed[SubmitReviewRequest]](bytes.NewReader(data))
	require.NoError(t, err)

	recovered, _, err := decoded.Recover()
	require.NoError(t, err)
	require.Equal(t, uint64(3), recovered.PaperID)
	require.Equal(t, "solid methodology", recovered.Comment)
}
