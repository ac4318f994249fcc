package adb

import (
	"bytes"
	"crypto"
	"crypto/md5"
	"crypto/rsa"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// PublicKey 解析后的ADB RSA公钥
// adbkey.pub使用mincrypt的二进制布局再做base64
type PublicKey struct {
	*rsa.PublicKey
	Fingerprint string
	Comment     string
}

// ParsePublicKey 解析adbkey.pub格式的公钥
// 格式为 base64(mincrypt结构) [空格 注释]
func ParsePublicKey(data []byte) (*PublicKey, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("invalid public key: empty input")
	}

	encoded := data
	comment := ""
	if idx := bytes.IndexAny(data, " \t\x00"); idx >= 0 {
		encoded = data[:idx]
		comment = strings.TrimSpace(string(data[idx+1:]))
	}

	keyData, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %v", err)
	}

	return parseMincrypt(keyData, comment)
}

// parseMincrypt 解析mincrypt的RSAPublicKey结构
// 布局: len(u32) n0inv(u32) n[len]u32 rr[len]u32 exponent(u32)，全部小端
func parseMincrypt(data []byte, comment string) (*PublicKey, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("invalid public key: %d bytes", len(data))
	}

	words := binary.LittleEndian.Uint32(data[0:4])
	expected := 4 + 4 + words*4 + words*4 + 4
	if uint32(len(data)) != expected {
		return nil, fmt.Errorf("invalid public key length: got %d, want %d", len(data), expected)
	}

	// 模数按小端u32数组存储，整体反转得到大端字节串
	nBytes := make([]byte, words*4)
	copy(nBytes, data[8:8+words*4])
	for i, j := 0, len(nBytes)-1; i < j; i, j = i+1, j-1 {
		nBytes[i], nBytes[j] = nBytes[j], nBytes[i]
	}

	e := binary.LittleEndian.Uint32(data[len(data)-4:])
	if e != 3 && e != 65537 {
		return nil, fmt.Errorf("invalid exponent %d, only 3 and 65537 are supported", e)
	}

	md5sum := md5.Sum(data)

	return &PublicKey{
		PublicKey: &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(e),
		},
		Fingerprint: formatFingerprint(md5sum[:]),
		Comment:     comment,
	}, nil
}

// formatFingerprint md5指纹的冒号分隔表示
func formatFingerprint(sum []byte) string {
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(parts, ":")
}

// VerifySignature 校验设备认证用的token签名
// adb用RSA PKCS#1 v1.5加SHA1 DigestInfo对20字节token签名
func (k *PublicKey) VerifySignature(token, signature []byte) error {
	return rsa.VerifyPKCS1v15(k.PublicKey, crypto.SHA1, token, signature)
}
