package adb

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mincryptBlob 按adbkey.pub的二进制布局编码公钥
func mincryptBlob(t *testing.T, key *rsa.PublicKey) []byte {
	t.Helper()

	nBytes := key.N.Bytes()
	words := uint32((len(nBytes) + 3) / 4)

	blob := make([]byte, 4+4+words*4+words*4+4)
	binary.LittleEndian.PutUint32(blob[0:], words)
	// n0inv在解析时被忽略，rr同理

	// 模数大端转小端
	n := make([]byte, words*4)
	copy(n[int(words*4)-len(nBytes):], nBytes)
	for i, j := 0, len(n)-1; i < j; i, j = i+1, j-1 {
		n[i], n[j] = n[j], n[i]
	}
	copy(blob[8:], n)

	binary.LittleEndian.PutUint32(blob[len(blob)-4:], uint32(key.E))
	return blob
}

func testKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	blob := mincryptBlob(t, &private.PublicKey)
	encoded := base64.StdEncoding.EncodeToString(blob) + " user@host"
	return private, []byte(encoded)
}

func TestParsePublicKey(t *testing.T) {
	private, encoded := testKey(t)

	key, err := ParsePublicKey(encoded)
	require.NoError(t, err)

	assert.Equal(t, 0, private.PublicKey.N.Cmp(key.N))
	assert.Equal(t, private.PublicKey.E, key.E)
	assert.Equal(t, "user@host", key.Comment)

	// md5指纹的冒号分隔形式
	assert.Regexp(t, `^([0-9a-f]{2}:){15}[0-9a-f]{2}$`, key.Fingerprint)
}

func TestParsePublicKeyNoComment(t *testing.T) {
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString(mincryptBlob(t, &private.PublicKey))
	key, err := ParsePublicKey([]byte(encoded))
	require.NoError(t, err)
	assert.Empty(t, key.Comment)
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePublicKey([]byte(""))
	assert.Error(t, err)

	_, err = ParsePublicKey([]byte("not base64!!!"))
	assert.Error(t, err)

	_, err = ParsePublicKey([]byte(base64.StdEncoding.EncodeToString([]byte("short"))))
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	private, encoded := testKey(t)

	key, err := ParsePublicKey(encoded)
	require.NoError(t, err)

	token := make([]byte, 20)
	_, err = rand.Read(token)
	require.NoError(t, err)

	signature, err := rsa.SignPKCS1v15(rand.Reader, private, crypto.SHA1, token)
	require.NoError(t, err)

	assert.NoError(t, key.VerifySignature(token, signature))
	assert.Error(t, key.VerifySignature(make([]byte, 20), signature))
}

func TestPublicKeyToPem(t *testing.T) {
	_, encoded := testKey(t)

	key, err := ParsePublicKey(encoded)
	require.NoError(t, err)

	pemText, err := PublicKeyToPem(key)
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(pemText))
	require.NotNil(t, block)
	assert.Equal(t, "PUBLIC KEY", block.Type)

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, 0, key.N.Cmp(parsed.(*rsa.PublicKey).N))
}

func TestPublicKeyToOpenSSH(t *testing.T) {
	_, encoded := testKey(t)

	key, err := ParsePublicKey(encoded)
	require.NoError(t, err)

	line := PublicKeyToOpenSSH(key, "adbkey")
	assert.True(t, strings.HasPrefix(line, "ssh-rsa "))
	assert.True(t, strings.HasSuffix(line, " adbkey"))
}
