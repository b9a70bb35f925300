package utils

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/datazip-inc/olake-configurator/constants"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

const kmsKeyPrefix = "arn:aws:kms:"

// encryptedObject is the envelope written by the backend for encrypted configs
type encryptedObject struct {
	EncryptedData string `json:"encrypted_data"`
}

type decryptionConfig struct {
	kmsClient *kms.Client
	keyID     string
	localKey  []byte
	disabled  bool
}

func getDecryptionConfig(ctx context.Context) (*decryptionConfig, error) {
	key := viper.GetString(constants.EncryptionKey)
	if strings.TrimSpace(key) == "" {
		return &decryptionConfig{disabled: true}, nil
	}

	if strings.HasPrefix(key, kmsKeyPrefix) {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return &decryptionConfig{kmsClient: kms.NewFromConfig(cfg), keyID: key}, nil
	}

	// local AES-GCM mode with SHA-256 derived key
	hash := sha256.Sum256([]byte(key))
	return &decryptionConfig{localKey: hash[:]}, nil
}

func (d *decryptionConfig) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(d.localKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Decrypt decrypts cipherData with the configured ENCRYPTION_KEY; without a key the data is returned as is.
func Decrypt(ctx context.Context, cipherData []byte) ([]byte, error) {
	dc, err := getDecryptionConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	if dc.disabled {
		return cipherData, nil
	}

	if dc.kmsClient != nil {
		out, err := dc.kmsClient.Decrypt(ctx, &kms.DecryptInput{
			CiphertextBlob: cipherData,
			KeyId:          &dc.keyID,
		})
		if err != nil {
			return nil, fmt.Errorf("decryption failed: %w", err)
		}
		return out.Plaintext, nil
	}

	aead, err := dc.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(cipherData) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := cipherData[:nonceSize], cipherData[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// Encrypt is the inverse of Decrypt
func Encrypt(ctx context.Context, plainData []byte) ([]byte, error) {
	dc, err := getDecryptionConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %w", err)
	}

	if dc.disabled {
		return plainData, nil
	}

	if dc.kmsClient != nil {
		out, err := dc.kmsClient.Encrypt(ctx, &kms.EncryptInput{
			KeyId:     &dc.keyID,
			Plaintext: plainData,
		})
		if err != nil {
			return nil, fmt.Errorf("encryption failed: %w", err)
		}
		return out.CiphertextBlob, nil
	}

	aead, err := dc.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plainData, nil), nil
}

// DecryptFileContent accepts either an {"encrypted_data": "<std base64>"} envelope
// or a (possibly JSON quoted) url-safe base64 string and returns the plaintext.
func DecryptFileContent(content []byte) ([]byte, error) {
	if strings.TrimSpace(viper.GetString(constants.EncryptionKey)) == "" {
		return content, nil
	}

	ctx := context.Background()
	trimmed := bytes.TrimSpace(content)

	if bytes.HasPrefix(trimmed, []byte("{")) {
		envelope := encryptedObject{}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal encrypted data: %s", err)
		}

		// a plain config object is passed through
		if envelope.EncryptedData == "" {
			return content, nil
		}

		encryptedData, err := base64.StdEncoding.DecodeString(envelope.EncryptedData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data: %s", err)
		}

		return Decrypt(ctx, encryptedData)
	}

	var unquoted string
	if err := json.Unmarshal(trimmed, &unquoted); err != nil {
		unquoted = string(trimmed)
	}

	encryptedData, err := base64.URLEncoding.DecodeString(unquoted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %s", err)
	}

	return Decrypt(ctx, encryptedData)
}
