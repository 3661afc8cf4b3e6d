package models

import (
	"encoding/hex"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// IntentView is the interchange representation of an intent. Numeric fields
// (nonce, sequence key, call values) are decimal strings so that consumers are
// never exposed to float truncation of large unsigned integers.
type IntentView struct {
	ID          string          `json:"id"`
	Account     string          `json:"account"`
	ChainID     int             `json:"chain_id"`
	KeyHash     string          `json:"key_hash"`
	SequenceKey string          `json:"sequence_key"`
	Nonce       string          `json:"nonce"`
	Digest      string          `json:"digest"`
	Calls       []CallView      `json:"calls"`
	Threshold   int             `json:"threshold"`
	Owners      []string        `json:"owners"`
	Signatures  []SignatureView `json:"signatures"`
	Status      string          `json:"status"`
	TxHash      string          `json:"tx_hash,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CallView is the interchange representation of a single call
type CallView struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

// SignatureView is the interchange representation of a collected signature
type SignatureView struct {
	Owner       string    `json:"owner"`
	Signature   string    `json:"signature"`
	CollectedAt time.Time `json:"collected_at"`
}

// View converts the intent to its interchange representation
func (i *Intent) View() IntentView {
	calls := make([]CallView, 0, len(i.Calls))
	for _, call := range i.Calls {
		calls = append(calls, CallView{
			To:    call.To.Hex(),
			Value: call.Value.String(),
			Data:  "0x" + hex.EncodeToString(call.Data),
		})
	}

	owners := make([]string, 0, len(i.Owners))
	for _, owner := range i.Owners {
		owners = append(owners, owner.Hex())
	}

	sigs := make([]SignatureView, 0, len(i.Signatures))
	for _, sig := range i.Signatures {
		sigs = append(sigs, SignatureView{
			Owner:       sig.Owner.Hex(),
			Signature:   "0x" + hex.EncodeToString(sig.Signature),
			CollectedAt: sig.CollectedAt,
		})
	}

	view := IntentView{
		ID:          i.ID,
		Account:     i.Account.Hex(),
		ChainID:     i.ChainID,
		KeyHash:     i.KeyHash.Hex(),
		SequenceKey: i.SequenceKey.String(),
		Nonce:       i.Nonce.String(),
		Digest:      i.Digest.Hex(),
		Calls:       calls,
		Threshold:   i.Threshold,
		Owners:      owners,
		Signatures:  sigs,
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.TxHash != (common.Hash{}) {
		view.TxHash = i.TxHash.Hex()
	}
	return view
}
