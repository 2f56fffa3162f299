package validatoraddress

import (
	"testing"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/kaspanet/go-secp256k1"
)

func privateKey(b byte) []byte {
	key := make([]byte, 32)
	key[31] = b
	return key
}

func TestFromPrivateKey(t *testing.T) {
	seen := make(map[externalapi.ValidatorAddress]byte)
	for b := byte(1); b <= 16; b++ {
		address, err := FromPrivateKey(privateKey(b))
		if err != nil {
			t.Fatalf("FromPrivateKey(%d): %+v", b, err)
		}
		again, err := FromPrivateKey(privateKey(b))
		if err != nil {
			t.Fatalf("FromPrivateKey(%d): %+v", b, err)
		}
		if address != again {
			t.Fatalf("FromPrivateKey(%d) isn't deterministic: %s != %s", b, address, again)
		}
		if other, ok := seen[address]; ok {
			t.Fatalf("keys %d and %d have the same address %s", other, b, address)
		}
		seen[address] = b
	}

	invalidKeys := [][]byte{
		make([]byte, 32),
		privateKey(1)[:31],
	}
	for _, key := range invalidKeys {
		_, err := FromPrivateKey(key)
		if err == nil {
			t.Errorf("FromPrivateKey(%x): expected an error", key)
		}
	}
}

func TestFromPublicKey(t *testing.T) {
	keyPair, err := secp256k1.GenerateSchnorrKeyPair()
	if err != nil {
		t.Fatalf("GenerateSchnorrKeyPair: %+v", err)
	}
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		t.Fatalf("SchnorrPublicKey: %+v", err)
	}
	address, err := FromPublicKey(publicKey)
	if err != nil {
		t.Fatalf("FromPublicKey: %+v", err)
	}
	fromPrivate, err := FromPrivateKey(keyPair.SerializePrivateKey()[:])
	if err != nil {
		t.Fatalf("FromPrivateKey: %+v", err)
	}
	if address != fromPrivate {
		t.Fatalf("the public key and the private key have different addresses %s and %s", address, fromPrivate)
	}
}
